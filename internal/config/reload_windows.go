//go:build windows

package config

// registerSignalHandler is a no-op on Windows since SIGHUP is not available.
// The file watcher and POST /admin/reload still trigger reloads.
func (r *Reloader) registerSignalHandler() {
	r.logger.Info("SIGHUP not available on Windows; reload via file watcher or admin API")
}
