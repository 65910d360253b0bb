// Package storage persists the local org-social document on disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/profile"
)

// FileStore reads and writes one org-social file. Saves go through a
// temp file and rename so a crash never leaves a half-written feed.
type FileStore struct {
	Path string
	// Source is the public URL the file is served from, stamped onto
	// loaded posts so replies to them resolve. May be empty.
	Source string
}

// Load parses the document at Path. A missing file yields an empty
// document with a blank profile rather than an error, so a first run
// starts from nothing.
func (s *FileStore) Load() (*parser.Document, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return &parser.Document{Profile: profile.New("", "")}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	doc, warnings := parser.ParseWithSource(string(data), s.Source)
	_ = warnings // header warnings are not fatal on load
	return doc, nil
}

// LoadWithWarnings is Load plus the header parse warnings.
func (s *FileStore) LoadWithWarnings() (*parser.Document, []profile.ParseError, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return &parser.Document{Profile: profile.New("", "")}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	doc, warnings := parser.ParseWithSource(string(data), s.Source)
	return doc, warnings, nil
}

// Save serializes the document back to Path.
func (s *FileStore) Save(doc *parser.Document) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".social-*.org")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(parser.Serialize(doc)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}
