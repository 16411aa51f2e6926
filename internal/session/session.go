// Package session persists guides as JSON files, one per session, and
// provides the portable interchange encoding used for import/export.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/stepshot/internal/document"
)

// ErrNotFound is returned when a session id has no stored record.
var ErrNotFound = errors.New("session not found")

// Image is one screenshot with its file metadata. Data holds the original
// encoded bytes; they are never re-encoded on save so round-trips are
// byte-exact.
type Image struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
	Data         []byte `json:"-"`
}

// Session is a stored guide: the document, its images, and bookkeeping.
type Session struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Steps      []document.Step `json:"steps"`
	Images     []Image         `json:"images"`
	CreatedAt  time.Time       `json:"createdAt"`
	ModifiedAt time.Time       `json:"modifiedAt"`
}

// Document returns the session's undoable document snapshot.
func (s *Session) Document() document.Document {
	return document.Document{Title: s.Title, Steps: s.Steps}
}

// SetDocument replaces the session's document snapshot.
func (s *Session) SetDocument(d document.Document) {
	s.Title = d.Title
	s.Steps = d.Steps
}

// Store keeps sessions as individual JSON files under one directory.
type Store struct {
	dir string
}

// NewStore opens (and creates if needed) the session directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (st *Store) path(id int64) string {
	return filepath.Join(st.dir, strconv.FormatInt(id, 10)+".json")
}

// Save writes s to disk. A zero ID is assigned from the current time;
// ModifiedAt is always refreshed and CreatedAt is set on first save.
func (st *Store) Save(s *Session) error {
	now := time.Now().UTC()
	if s.ID == 0 {
		s.ID = now.UnixMilli()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.ModifiedAt = now

	data, err := EncodeStored(s)
	if err != nil {
		return err
	}
	tmp := st.path(s.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, st.path(s.ID)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads the session with the given id.
func (st *Store) Load(id int64) (*Session, error) {
	data, err := os.ReadFile(st.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	s, err := DecodeStored(data)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", id, err)
	}
	return s, nil
}

// Delete removes the session with the given id.
func (st *Store) Delete(id int64) error {
	err := os.Remove(st.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// List returns all stored sessions sorted by most recent ModifiedAt
// (falling back to CreatedAt) first. Unreadable files are skipped.
func (st *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var out []*Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		s, err := st.Load(id)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return sortKey(out[i]).After(sortKey(out[j]))
	})
	return out, nil
}

func sortKey(s *Session) time.Time {
	if !s.ModifiedAt.IsZero() {
		return s.ModifiedAt
	}
	return s.CreatedAt
}

// storedSession is the on-disk shape: the interchange format plus ids and
// timestamps.
type storedSession struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Steps      []document.Step `json:"steps"`
	Images     []exportedImage `json:"images"`
	CreatedAt  time.Time       `json:"createdAt"`
	ModifiedAt time.Time       `json:"modifiedAt"`
}

// EncodeStored serializes a session for disk.
func EncodeStored(s *Session) ([]byte, error) {
	imgs, err := encodeImages(s.Images)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(storedSession{
		ID:         s.ID,
		Title:      s.Title,
		Steps:      s.Steps,
		Images:     imgs,
		CreatedAt:  s.CreatedAt,
		ModifiedAt: s.ModifiedAt,
	}, "", "  ")
}

// DecodeStored parses a session from disk.
func DecodeStored(data []byte) (*Session, error) {
	var raw storedSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	imgs, err := decodeImages(raw.Images)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         raw.ID,
		Title:      raw.Title,
		Steps:      raw.Steps,
		Images:     imgs,
		CreatedAt:  raw.CreatedAt,
		ModifiedAt: raw.ModifiedAt,
	}, nil
}
