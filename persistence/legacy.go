package persistence

import (
	"errors"
	"io/fs"
	"os"
)

// LegacyFile reads the flat JSON file written by pre-1.0 releases. It is a
// read-once source: the gateway copies its contents into the primary store
// and then removes it, so later loads never see this tier again.
type LegacyFile struct {
	Path string
}

func NewLegacyFile(path string) *LegacyFile {
	return &LegacyFile{Path: path}
}

func (l *LegacyFile) Read() ([]byte, error) {
	if l == nil || l.Path == "" {
		return nil, ErrRecordNotFound
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return data, nil
}

func (l *LegacyFile) Remove() error {
	if l == nil || l.Path == "" {
		return nil
	}
	return os.Remove(l.Path)
}
