package engine

import (
	"context"

	"github.com/younwookim/roomshell/internal/infrastructure/config"
)

// Apply takes over edited settings while running.
// Title and size changes reach the window; framerate, taskbar and visibility only apply at start.
func (in *Instance) Apply(s config.Settings) {
	in.mu.Lock()
	old := in.settings
	in.settings.Title = s.Title
	in.settings.Width = s.Width
	in.settings.Height = s.Height
	in.mu.Unlock()

	if s.Title != old.Title {
		in.window.SetTitle(s.Title)
		in.logger.Info("title changed", "title", s.Title)
	}
	if s.Width != old.Width || s.Height != old.Height {
		in.resize(s.Width, s.Height)
		in.logger.Info("window resized", "width", s.Width, "height", s.Height)
	}
	if s.Framerate != old.Framerate || s.Taskbar != old.Taskbar || s.Visible != old.Visible {
		in.logger.Warn("framerate, taskbar and visible take effect on restart",
			"framerate", s.Framerate, "taskbar", s.Taskbar, "visible", s.Visible)
	}
}

// Watch re-reads the config file on every change reported by w and applies it.
// A file that cannot be read, such as one an editor has moved away mid-save, leaves the
// current settings in place. It returns when ctx is done or w is closed.
func (in *Instance) Watch(ctx context.Context, w *config.Watcher) {
	if in.loader == nil || in.configName == "" {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			in.logger.Debug("config changed", "file", in.configName)
			s, read := in.readSettings()
			if !read {
				continue
			}
			in.Apply(s)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			in.logger.Warn("config watcher error", "error", err)
		}
	}
}
