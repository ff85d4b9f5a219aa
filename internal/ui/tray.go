// Package ui runs the system tray menu. The tray is the agent's only
// native surface; everything else happens in the browser app it opens.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

type Tray struct {
	logger *slog.Logger

	statusItem *systray.MenuItem
	videosItem *systray.MenuItem

	mu sync.Mutex

	onOpenApp func() error
	onQuit    func()
}

type TrayConfig struct {
	Logger    *slog.Logger
	OnOpenApp func() error
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger:    cfg.Logger,
		onOpenApp: cfg.OnOpenApp,
		onQuit:    cfg.OnQuit,
	}
}

// Run blocks until the tray exits. Must be called from the main
// goroutine on platforms that require it.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("VideoCraft")
	systray.SetTooltip("VideoCraft Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.videosItem = systray.AddMenuItem("Videos: 0", "Videos in the library")
	t.videosItem.Disable()

	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open VideoCraft...", "Open the editor in your browser")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit VideoCraft Agent")

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				t.handleOpenApp()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleOpenApp() {
	if t.onOpenApp != nil {
		if err := t.onOpenApp(); err != nil {
			t.logger.Error("failed to open app", "error", err)
		}
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateVideosCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.videosItem.SetTitle(fmt.Sprintf("Videos: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
