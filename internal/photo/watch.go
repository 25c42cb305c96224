package photo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Watch calls onChange whenever files below the album directories are
// created, written, renamed or removed. Bursts of events are coalesced over
// quiet. It blocks until ctx is done.
func Watch(ctx context.Context, albums []string, quiet time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs := 0
	for _, album := range albums {
		err := godirwalk.Walk(album, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if !de.IsDir() {
					return nil
				}
				if err := w.Add(path); err != nil {
					klog.Warningf("watch %s: %v", path, err)
					return nil
				}
				dirs++
				return nil
			},
		})
		if err != nil {
			klog.Warningf("walking %s for watch: %v", album, err)
		}
	}
	klog.Infof("watching %d dirs ...", dirs)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(2).Infof("event: %v", event)
			if event.Has(fsnotify.Create) {
				// new album subdirectories need their own watch
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = w.Add(event.Name)
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				fire = time.After(quiet)
			}
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Warningf("watch error: %v", err)
		}
	}
}
