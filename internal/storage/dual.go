package storage

import (
	"fmt"
	"path/filepath"

	"github.com/smorton/sitegate/internal/logger"
)

// Dual composes the primary (syncable) backend with the local fallback.
// Reads try the primary first; writes fall back to the local store on any
// primary failure, quota or otherwise. Only a dual failure surfaces to the
// caller. Device-local documents bypass the primary entirely via Local().
type Dual struct {
	primary  Backend
	fallback Backend
}

func NewDual(primary, fallback Backend) *Dual {
	return &Dual{primary: primary, fallback: fallback}
}

// Open builds the standard backend pair for a config value: postgres when
// the value is a connection string, sqlite otherwise. The local fallback is
// a JSON file in localDir either way, so device-local state never leaves
// the machine even when the primary is remote.
func Open(config, localDir string) *Dual {
	var primary Backend
	if IsPostgresConnString(config) {
		primary = NewPostgresBackend(config)
	} else {
		primary = NewSQLiteBackend(config)
	}
	localPath := filepath.Join(localDir, "local.json")
	return NewDual(primary, NewJSONBackend(localPath))
}

func (d *Dual) Init() error {
	if err := d.primary.Init(); err != nil {
		return err
	}
	return d.fallback.Init()
}

func (d *Dual) Load() error {
	if err := d.primary.Load(); err != nil {
		return err
	}
	return d.fallback.Load()
}

func (d *Dual) Close() error {
	perr := d.primary.Close()
	ferr := d.fallback.Close()
	if perr != nil {
		return perr
	}
	return ferr
}

// Local returns the device-local backend. Lock, pause, and quick-block
// documents are stored here only, never in the primary namespace.
func (d *Dual) Local() Backend { return d.fallback }

// Primary returns the syncable backend, for diagnostics.
func (d *Dual) Primary() Backend { return d.primary }

// Get reads from the primary backend and falls back to the local store on
// failure. A key missing from the primary is not a failure.
func (d *Dual) Get(key string) ([]byte, bool, error) {
	data, ok, err := d.primary.Get(key)
	if err == nil {
		return data, ok, nil
	}
	logger.Warn("Primary storage read failed, using fallback", "backend", d.primary.Name(), "key", key, "error", err)

	data, ok, ferr := d.fallback.Get(key)
	if ferr != nil {
		return nil, false, fmt.Errorf("both storage backends failed: %s: %v; %s: %w", d.primary.Name(), err, d.fallback.Name(), ferr)
	}
	return data, ok, nil
}

// Set writes to the primary backend and falls back to the local store on
// failure. Only a dual failure is returned.
func (d *Dual) Set(key string, value []byte) error {
	err := d.primary.Set(key, value)
	if err == nil {
		return nil
	}
	logger.Warn("Primary storage write failed, using fallback", "backend", d.primary.Name(), "key", key, "error", err)

	if ferr := d.fallback.Set(key, value); ferr != nil {
		return fmt.Errorf("both storage backends failed: %s: %v; %s: %w", d.primary.Name(), err, d.fallback.Name(), ferr)
	}
	return nil
}

// SetBoth writes the key to both backends in fallback order. Only a dual
// failure is returned.
func (d *Dual) SetBoth(key string, value []byte) error {
	perr := d.primary.Set(key, value)
	if perr != nil {
		logger.Warn("Primary storage write failed", "backend", d.primary.Name(), "key", key, "error", perr)
	}
	ferr := d.fallback.Set(key, value)
	if perr != nil && ferr != nil {
		return fmt.Errorf("both storage backends failed: %s: %v; %s: %w", d.primary.Name(), perr, d.fallback.Name(), ferr)
	}
	return nil
}

// Delete removes the key from both backends. Only a dual failure is
// returned.
func (d *Dual) Delete(key string) error {
	perr := d.primary.Delete(key)
	ferr := d.fallback.Delete(key)
	if perr != nil && ferr != nil {
		return fmt.Errorf("both storage backends failed: %s: %v; %s: %w", d.primary.Name(), perr, d.fallback.Name(), ferr)
	}
	return nil
}

// Watch subscribes to change notifications across both namespaces. The
// returned function unsubscribes from both.
func (d *Dual) Watch(fn func(key string)) func() {
	unsubPrimary := d.primary.Watch(fn)
	unsubFallback := d.fallback.Watch(fn)
	return func() {
		unsubPrimary()
		unsubFallback()
	}
}
