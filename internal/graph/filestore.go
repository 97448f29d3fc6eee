package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klauspost/compress/gzip"
)

// FileStore persists graph documents as gzip-compressed JSON files, one per
// project, under a single directory.
type FileStore struct {
	dir string
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(projectID string) string {
	name := unsafeFilenameChars.ReplaceAllString(projectID, "_")
	return filepath.Join(s.dir, name+".json.gz")
}

// Load implements DocumentStore.
func (s *FileStore) Load(projectID string) (Document, bool, error) {
	data, err := os.ReadFile(s.path(projectID))
	if os.IsNotExist(err) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to read graph document: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return Document{}, false, fmt.Errorf("graph document is not valid gzip: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to decompress graph document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, false, fmt.Errorf("graph document is not valid JSON: %w", err)
	}
	return doc, true, nil
}

// Save implements DocumentStore. The document is written to a temp file and
// renamed into place so a crash mid-write never leaves a truncated document.
func (s *FileStore) Save(projectID string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode graph document: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("failed to compress graph document: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress graph document: %w", err)
	}

	target := s.path(projectID)
	tmp, err := os.CreateTemp(s.dir, ".graph-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write graph document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write graph document: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace graph document: %w", err)
	}
	return nil
}

// Delete implements DocumentStore.
func (s *FileStore) Delete(projectID string) error {
	err := os.Remove(s.path(projectID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
