package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/exprir/internal/codegen"
)

// Op indicates a change operation in the filesystem.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event describes a filesystem change event.
type Event struct {
	Path string
	Op   Op
}

// FSWatcher forwards fsnotify notifications as Events. Events is closed
// once the watcher stops, including after Close while nobody is reading.
type FSWatcher struct {
	w    *fsnotify.Watcher
	evC  chan Event
	erC  chan error
	done chan struct{}
	once sync.Once
}

// NewFSWatcher creates a new FSWatcher.
func NewFSWatcher() (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &FSWatcher{
		w:    w,
		evC:  make(chan Event, 128),
		erC:  make(chan error, 1),
		done: make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

func (fw *FSWatcher) loop() {
	defer close(fw.evC)
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}
			select {
			case fw.evC <- Event{Path: ev.Name, Op: op}:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func (fw *FSWatcher) Events() <-chan Event     { return fw.evC }
func (fw *FSWatcher) Errors() <-chan error     { return fw.erC }
func (fw *FSWatcher) Add(name string) error    { return fw.w.Add(name) }
func (fw *FSWatcher) Remove(name string) error { return fw.w.Remove(name) }

// Close stops the watcher. It is safe to call more than once.
func (fw *FSWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.w.Close()
	})
	return err
}

// Settle is how long Watch waits after the last event before recompiling,
// so that editors writing a file in several steps trigger one compilation.
var Settle = 50 * time.Millisecond

// Watch compiles path once, then again after every change, passing each
// outcome to report. The directory is watched rather than the file so that
// editors that replace the file on save keep being followed. Watch returns
// when ctx is done or the watcher fails.
func Watch(ctx context.Context, path string, opts codegen.Options, report func([]Result, error)) error {
	fw, err := NewFSWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	target := filepath.Clean(path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return err
	}

	report(CompileFile(path, opts))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fw.Errors():
			return err
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Path) != target || ev.Op&(OpCreate|OpWrite|OpRename) == 0 {
				continue
			}
			pending = time.After(Settle)
		case <-pending:
			pending = nil
			report(CompileFile(path, opts))
		}
	}
}
