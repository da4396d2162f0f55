// Package snapshot persists registry state dumps to disk and reloads them.
//
// The registry core delegates snapshot layout to each store; this package is
// optional glue that carries an ordered snapshot list between DumpState /
// LoadState and a YAML file. The file encodes the list positionally, so it
// is only valid for a registry with the same stores in the same order.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fluxgate/fluxgate/util"
)

// fileMode is the permission set for written snapshot files.
const fileMode = 0o600

// document is the on-disk snapshot layout.
type document struct {
	Stores []any `yaml:"stores"`
}

// Save writes the ordered per-store snapshot list to path as YAML.
func Save(path string, snapshots []any) error {
	data, err := yaml.Marshal(document{Stores: snapshots})
	if err != nil {
		return util.WrapError(err, "encoding snapshot")
	}

	if err := os.WriteFile(filepath.Clean(path), data, fileMode); err != nil {
		return util.WrapError(err, "writing snapshot")
	}

	return nil
}

// Load reads an ordered per-store snapshot list previously written by Save.
func Load(path string) ([]any, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, util.WrapError(err, "reading snapshot")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, util.WrapError(err, "decoding snapshot")
	}

	return doc.Stores, nil
}

// Stater is the part of the registry the snapshot package needs.
type Stater interface {
	DumpState() []any
	LoadState(snapshots []any) error
}

// Dump saves the registry's current state to path.
func Dump(r Stater, path string) error {
	return Save(path, r.DumpState())
}

// Restore loads the snapshot at path into the registry. The file must hold
// exactly one entry per registered store, in registration order.
func Restore(r Stater, path string) error {
	snapshots, err := Load(path)
	if err != nil {
		return err
	}
	if err := r.LoadState(snapshots); err != nil {
		return fmt.Errorf("restoring snapshot %s: %w", path, err)
	}
	return nil
}
