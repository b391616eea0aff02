// Package cfb provides read access to the streams of an OLE compound file.
//
// Table files are compound documents whose storages hold one stream per game
// item, image, sound and so on. Storage flattens the hierarchy into
// slash-separated stream paths such as "GameStg/GameData".
package cfb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
)

// ErrNotFound is returned when a stream does not exist.
var ErrNotFound = errors.New("stream not found")

// ErrInvalidFile is returned when the data is not a compound file.
var ErrInvalidFile = errors.New("invalid compound file")

type stream struct {
	path string
	data []byte
}

// Storage holds the streams of a compound file.
type Storage struct {
	streams map[string]*stream
}

// Open reads every stream of the compound file in data.
func Open(data []byte) (*Storage, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	st := &Storage{streams: make(map[string]*stream)}
	for {
		entry, err := doc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading directory: %v", ErrInvalidFile, err)
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("%w: reading stream %s: %v", ErrInvalidFile, entry.Name, err)
		}
		st.add(joinPath(entry.Path, entry.Name), buf)
	}
	return st, nil
}

// OpenFile reads a compound file from disk.
func OpenFile(path string) (*Storage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return Open(data)
}

// NewMemStorage builds a storage from path -> contents.
func NewMemStorage(streams map[string][]byte) *Storage {
	st := &Storage{streams: make(map[string]*stream, len(streams))}
	for path, data := range streams {
		st.add(path, data)
	}
	return st
}

func (s *Storage) add(path string, data []byte) {
	path = cleanPath(path)
	s.streams[normalizePath(path)] = &stream{path: path, data: data}
}

// List returns all stream paths, sorted.
func (s *Storage) List() []string {
	result := make([]string, 0, len(s.streams))
	for _, st := range s.streams {
		result = append(result, st.path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a stream exists.
func (s *Storage) Contains(path string) bool {
	_, ok := s.streams[normalizePath(path)]
	return ok
}

// Read returns the contents of a stream. The slice is shared with the storage.
func (s *Storage) Read(path string) ([]byte, error) {
	st, ok := s.streams[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return st.data, nil
}

func joinPath(parents []string, name string) string {
	if len(parents) > 0 && parents[0] == "Root Entry" {
		parents = parents[1:]
	}
	return strings.Join(append(append([]string(nil), parents...), name), "/")
}

func cleanPath(path string) string {
	return strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")
}

// Compound file names compare case-insensitively.
func normalizePath(path string) string {
	return strings.ToLower(cleanPath(path))
}
