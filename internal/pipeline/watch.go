package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the watcher waits after the last filesystem event
// before starting a batch, so partially-copied PDFs are not picked up.
const settleDelay = 2 * time.Second

// Watch runs an initial batch, then processes new PDFs as they land in the
// inbox until the context is cancelled.
func (p *Pipeline) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	inbox := p.home.InputNewDir()
	if err := watcher.Add(inbox); err != nil {
		return fmt.Errorf("failed to watch %s: %w", inbox, err)
	}
	p.logger.Info("watching for new PDFs", "dir", inbox)

	// Sweep anything already waiting.
	if _, err := p.Run(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(settleDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			p.logger.Debug("inbox event", "file", filepath.Base(event.Name), "op", event.Op.String())
			// Debounce: restart the settle window on every event.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(settleDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if _, err := p.Run(ctx); err != nil {
				return err
			}
		}
	}
}
