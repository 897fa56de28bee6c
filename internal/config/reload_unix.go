//go:build !windows

package config

import (
	"os"
	"os/signal"
	"syscall"
)

// registerSignalHandler reloads on SIGHUP until Stop is called.
func (r *Reloader) registerSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		r.signalLoop(sigCh)
		signal.Stop(sigCh)
	}()

	r.logger.Info("SIGHUP config reload handler registered", "pid", os.Getpid())
}

// signalLoop drains sigCh. A failed reload keeps the current config and the
// loop keeps listening, so a fixed file can be picked up by the next SIGHUP.
func (r *Reloader) signalLoop(sigCh <-chan os.Signal) {
	for {
		select {
		case sig := <-sigCh:
			r.logger.Info("signal received, reloading config", "signal", sig.String(), "path", r.path)
			if !r.Reload() {
				r.logger.Warn("SIGHUP reload rejected; fix the file and signal again", "path", r.path)
			}
		case <-r.stopCh:
			return
		}
	}
}
