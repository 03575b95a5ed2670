// Package store reads and writes layer files: a YAML document holding the layer
// forest, the active layer, the anchor counter and optionally the undo history.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bethropolis/strata/internal/history"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
	"gopkg.in/yaml.v3"
)

// Version is the current layer file format version.
const Version = 1

var (
	// ErrNoBase is returned for files whose forest has no base layer.
	ErrNoBase = errors.New("layer file has no base layer")
	// ErrVersion is returned for files written by a newer format.
	ErrVersion = errors.New("unsupported layer file version")
)

// File is the on-disk representation of a session.
type File struct {
	Version int                `yaml:"version"`
	Active  int                `yaml:"active"`
	Next    int                `yaml:"next"`
	Forest  layer.Forest       `yaml:"forest"`
	History []history.Snapshot `yaml:"history,omitempty"`
	Redo    []history.Snapshot `yaml:"redo,omitempty"`
}

// Marshal encodes a file as YAML.
func Marshal(f *File) ([]byte, error) {
	if f.Version == 0 {
		f.Version = Version
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encoding layer file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding layer file: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates a layer file.
func Unmarshal(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding layer file: %w", err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, f.Version)
	}
	if len(f.Forest) == 0 || f.Forest.Base() == nil {
		return nil, ErrNoBase
	}
	fillModifications(f.Forest)
	if f.Active < 0 || f.Active >= f.Forest.Len() {
		logger.Warnf("Layer file active layer %d out of range, using the base layer", f.Active)
		f.Active = 0
	}
	f.Next = max(f.Next, layer.NextAnchorID(f.Forest))
	for _, snaps := range [][]history.Snapshot{f.History, f.Redo} {
		for _, snap := range snaps {
			fillModifications(snap.Forest)
			f.Next = max(f.Next, snap.Next, layer.NextAnchorID(snap.Forest))
		}
	}
	return &f, nil
}

// fillModifications replaces missing modification maps with empty ones.
func fillModifications(f layer.Forest) {
	for _, l := range layer.FlattenLayers(f) {
		if l.Modifications == nil {
			l.Modifications = map[int]string{}
		}
	}
}

// Load reads a layer file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layer file %s: %w", path, err)
	}
	f, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debugf("Loaded layer file %s (%d layers)", path, f.Forest.Len())
	return f, nil
}

// Save writes a layer file atomically by renaming a temporary file into place.
func Save(path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, ".strata-*")
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	logger.Debugf("Saved layer file %s", path)
	return nil
}
