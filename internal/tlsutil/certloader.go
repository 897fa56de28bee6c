// Package tlsutil serves the echo listener's certificate and reloads it when
// the files on disk are rotated.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CertLoader holds the current key pair for tls.Config.GetCertificate. The
// directories containing the files are watched rather than the files
// themselves so that rotation by rename or symlink swap is also seen.
type CertLoader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	notAfter time.Time
	certFile string
	keyFile  string
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New loads the key pair and starts watching for changes. It fails if the
// initial pair cannot be loaded.
func New(certFile, keyFile string, logger *slog.Logger) (*CertLoader, error) {
	cl := &CertLoader{
		certFile: filepath.Clean(certFile),
		keyFile:  filepath.Clean(keyFile),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	if err := cl.load(); err != nil {
		return nil, fmt.Errorf("initial certificate load: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	for _, dir := range cl.dirs() {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	cl.watcher = watcher
	go cl.watchLoop()

	logger.Info("TLS certificate loaded",
		"cert_file", cl.certFile,
		"key_file", cl.keyFile,
		"not_after", cl.NotAfter(),
	)
	return cl, nil
}

// TLSConfig returns a server configuration backed by the loader.
func (cl *CertLoader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: cl.GetCertificate,
	}
}

// GetCertificate returns the current certificate; it runs on every handshake.
func (cl *CertLoader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.cert, nil
}

// NotAfter is the expiry of the current leaf certificate.
func (cl *CertLoader) NotAfter() time.Time {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.notAfter
}

// Reload re-reads the pair from disk. On failure the previous pair stays in
// use.
func (cl *CertLoader) Reload() error {
	if err := cl.load(); err != nil {
		cl.logger.Error("TLS certificate reload failed, keeping current",
			"error", err, "cert_file", cl.certFile, "key_file", cl.keyFile)
		return err
	}
	cl.logger.Info("TLS certificate reloaded", "cert_file", cl.certFile, "not_after", cl.NotAfter())
	return nil
}

// Stop terminates the watcher. It is safe to call more than once.
func (cl *CertLoader) Stop() {
	cl.stopOnce.Do(func() {
		close(cl.stopCh)
		if cl.watcher != nil {
			cl.watcher.Close()
		}
	})
}

func (cl *CertLoader) load() error {
	cert, err := tls.LoadX509KeyPair(cl.certFile, cl.keyFile)
	if err != nil {
		return err
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("parsing leaf certificate: %w", err)
	}
	cert.Leaf = leaf

	cl.mu.Lock()
	cl.cert = &cert
	cl.notAfter = leaf.NotAfter
	cl.mu.Unlock()
	return nil
}

func (cl *CertLoader) dirs() []string {
	certDir, keyDir := filepath.Dir(cl.certFile), filepath.Dir(cl.keyFile)
	if certDir == keyDir {
		return []string{certDir}
	}
	return []string{certDir, keyDir}
}

// relevant reports whether an event in a watched directory may have changed
// the pair. Symlink-swap rotations touch a sibling entry, so any create in
// the directory counts.
func (cl *CertLoader) relevant(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if name == cl.certFile || name == cl.keyFile {
		return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
	}
	return event.Op&fsnotify.Create != 0
}

func (cl *CertLoader) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-cl.watcher.Events:
			if !ok {
				return
			}
			if !cl.relevant(event) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, func() {
				cl.Reload() //nolint:errcheck
			})
		case err, ok := <-cl.watcher.Errors:
			if !ok {
				return
			}
			cl.logger.Error("TLS certificate watcher error", "error", err)
		case <-cl.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}
