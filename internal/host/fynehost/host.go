// Package fynehost binds the shell to its concrete application framework.
// It maps window manifests onto framework windows and owns the blocking
// run loop; rendering and event handling stay with the framework.
package fynehost

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"skiff/internal/shell"
)

type Host struct {
	mu      sync.Mutex
	fyneApp fyne.App
	stopped bool
}

func New() *Host {
	return &Host{}
}

// Run creates one framework window per manifest window and blocks in the
// framework event loop until the application exits or Quit is called.
func (h *Host) Run(ctx context.Context, rc *shell.RuntimeContext) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	app.SetMetadata(fyne.AppMetadata{
		ID:      rc.App.Identifier,
		Name:    rc.App.Name,
		Version: rc.App.Version,
	})
	fyneApp := app.NewWithID(rc.App.Identifier)
	h.fyneApp = fyneApp
	h.mu.Unlock()

	for i, manifest := range rc.App.Windows {
		title := manifest.Title
		if title == "" {
			title = rc.App.Name
		}
		window := fyneApp.NewWindow(title)

		width, height := manifest.Size()
		window.Resize(fyne.NewSize(width, height))
		window.SetFixedSize(!manifest.IsResizable())
		if manifest.Center {
			window.CenterOnScreen()
		}
		if i == 0 {
			// Closing the first window ends the run loop.
			window.SetMaster()
		}
		window.Show()
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			h.Quit()
		}()
	}

	fyneApp.Run()
	return nil
}

// Quit asks the framework event loop to end. Safe to call at any time,
// from any goroutine, more than once.
func (h *Host) Quit() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.fyneApp != nil {
		h.fyneApp.Quit()
	}
}
