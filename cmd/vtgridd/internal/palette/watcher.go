// Package palette hot-reloads the terminal's 256-color palette from a JSON
// file on disk, so an operator can retheme every live session without a
// restart.
package palette

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/coachfortner/vtgrid"
)

// fileFormat is the palette file's JSON shape: Colors maps a palette index
// to a 6-digit hex RGB string; indices absent from the map are left
// untouched.
type fileFormat struct {
	Colors map[int]string `json:"colors"`
}

// Watcher applies a palette file to vtgrid.DefaultPalette on load and again
// on every subsequent write.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a palette watcher for the file at path. Call Start to load it
// once and begin watching for changes.
func New(path string) *Watcher {
	return &Watcher{path: path, done: make(chan struct{})}
}

// Start loads the palette immediately and begins watching path for writes.
func (w *Watcher) Start() error {
	if err := w.reload(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create palette watcher: %v", err)
	}
	w.watcher = fw

	if err := fw.Add(w.path); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch palette file: %v", err)
	}

	go w.handleEvents()
	log.Printf("vtgridd: watching palette file %s", w.path)
	return nil
}

// Stop stops watching for further changes.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		close(w.done)
		w.watcher.Close()
	}
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := w.reload(); err != nil {
					log.Printf("vtgridd: failed to reload palette: %v", err)
				} else {
					log.Printf("vtgridd: reloaded palette from %s", w.path)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("vtgridd: palette watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("invalid palette file: %v", err)
	}

	for index, hex := range file.Colors {
		if index < 0 || index >= 256 {
			continue
		}
		rgba, err := parseHexColor(hex)
		if err != nil {
			log.Printf("vtgridd: skipping palette index %d: %v", index, err)
			continue
		}
		vtgrid.DefaultPalette[index] = rgba
	}
	return nil
}

func parseHexColor(s string) (color.RGBA, error) {
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("expected 6 hex digits, got %q", s)
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}
