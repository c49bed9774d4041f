package cli

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/modules"
)

// watchDebounce batches the burst of events an editor save produces into a
// single re-check.
const watchDebounce = 200 * time.Millisecond

func runWatch(args []string) int {
	opts, err := parseCheckArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	checker, err := modules.NewChecker(opts.root, opts.tolerant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer checker.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer watcher.Close()

	srcDir := filepath.Join(opts.root, checker.Manifest.Source)
	if err := watchTree(watcher, srcDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	p := newPrinter(os.Stdout)
	runOnce(checker, p)
	fmt.Fprintf(p.out, "watching %s\n", srcDir)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watchTree(watcher, ev.Name)
				}
			}
			if !relevantEvent(ev) {
				continue
			}
			// Last write wins: any further event restarts the window.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintln(os.Stderr, "watch:", err)

		case <-timer.C:
			runOnce(checker, p)

		case <-interrupt:
			return 0
		}
	}
}

// watchTree registers dir and every subdirectory, skipping the cache dir.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".quill" {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func relevantEvent(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, config.SourceFileExt) &&
		filepath.Base(ev.Name) != config.ManifestFileName {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}
