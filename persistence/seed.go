package persistence

import (
	_ "embed"
	"os"
)

// The bundled starter collection, shipped with the binary the way the web
// build shipped a static backup file next to index.html.
//
//go:embed seed.json
var bundledSeed []byte

// Seed supplies the initial dataset when no persisted data exists anywhere.
// A configured path takes precedence over the bundled file.
type Seed struct {
	Path string
}

func NewSeed(path string) *Seed {
	return &Seed{Path: path}
}

func (s *Seed) Read() ([]byte, error) {
	if s != nil && s.Path != "" {
		return os.ReadFile(s.Path)
	}
	return bundledSeed, nil
}
