package server

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watches the socket's directory and warns when the socket file is removed
// or replaced by someone else while the server is running.
//
// A server whose socket file has been unlinked keeps running but can no
// longer be reached by new clients, which is otherwise silent.
func (s *Server) watchSocket() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(s.socketPath)); err != nil {
		watcher.Close()
		return err
	}

	s.watcher = watcher
	go s.watchLoop(watcher)
	return nil
}

func (s *Server) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.socketPath {
				continue
			}
			if s.stopping() {
				return
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				s.log.Warn("socket file removed externally, new clients cannot connect", "path", s.socketPath)
			case event.Has(fsnotify.Create):
				s.log.Warn("socket path replaced by another process", "path", s.socketPath)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Debug("socket watch error", "error", err)
		}
	}
}

// Whether shutdown has begun.
func (s *Server) stopping() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
