// Package sessionfile keeps durable slot values in a single YAML document
// on the local disk.
package sessionfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/session"
)

const fileMode = 0o600

// ErrCorrupted is returned when the slot file cannot be decoded.
var ErrCorrupted = errors.New("slot file is corrupted")

type entry struct {
	Value     string    `yaml:"value"`
	UpdatedAt time.Time `yaml:"updatedAt"`
}

type document struct {
	Slots map[string]entry `yaml:"slots"`
}

// Slot stores values in the YAML file at path. Every write replaces the whole
// file through a temporary file and a rename.
type Slot struct {
	mu   sync.Mutex
	path string
}

var _ = session.Slot(&Slot{})

func NewSlot(path string) *Slot {
	return &Slot{path: path}
}

func (s *Slot) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}

	e, ok := doc.Slots[key]
	if !ok {
		return "", session.ErrSlotEmpty
	}

	return e.Value, nil
}

func (s *Slot) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readForWrite(ctx)
	if err != nil {
		return err
	}

	doc.Slots[key] = entry{Value: value, UpdatedAt: time.Now().UTC()}

	return s.write(doc)
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if errors.Is(err, ErrCorrupted) {
		slogctx.Warn(ctx, "Replacing corrupted slot file", "path", s.path, "error", err)

		return s.write(document{Slots: make(map[string]entry)})
	}
	if err != nil {
		return err
	}

	if _, ok := doc.Slots[key]; !ok {
		return nil
	}

	delete(doc.Slots, key)

	return s.write(doc)
}

// readForWrite starts over from an empty document when the file is corrupted.
func (s *Slot) readForWrite(ctx context.Context) (document, error) {
	doc, err := s.read()
	if errors.Is(err, ErrCorrupted) {
		slogctx.Warn(ctx, "Replacing corrupted slot file", "path", s.path, "error", err)

		return document{Slots: make(map[string]entry)}, nil
	}

	return doc, err
}

func (s *Slot) read() (document, error) {
	doc := document{Slots: make(map[string]entry)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}

		return doc, fmt.Errorf("reading slot file: %w", err)
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	if doc.Slots == nil {
		doc.Slots = make(map[string]entry)
	}

	return doc, nil
}

func (s *Slot) write(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling slot file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating slot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary slot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting slot file mode: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temporary slot file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary slot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing slot file: %w", err)
	}

	return nil
}
