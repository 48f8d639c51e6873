// Package catalog assigns stable integer identifiers to the documents of a
// collection and records each document's token count.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
)

// IDMapFileName is the snapshot written next to the document directory.
const IDMapFileName = "docId_Map.json"

// Document is one catalogued source file.
type Document struct {
	ID     int
	Name   string
	Length int
}

// Catalog is the id, name and length mapping for a collection. It is
// immutable once Build returns.
type Catalog struct {
	docs   []Document
	byID   map[int]int
	logger *slog.Logger
}

type options struct {
	writeIDMap bool
	logger     *slog.Logger
}

// Option configures Build.
type Option func(*options)

// WithoutIDMap skips writing the docId_Map.json snapshot.
func WithoutIDMap() Option {
	return func(o *options) { o.writeIDMap = false }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds a catalog from already known documents. IDs must be positive and
// unique.
func New(docs []Document) (*Catalog, error) {
	c := newEmpty(slog.Default().With("component", "catalog"))
	for _, d := range docs {
		if d.ID <= 0 {
			return nil, fmt.Errorf("document %q: %w: id %d must be positive", d.Name, apperrors.ErrInvalidInput, d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("document %q: %w: duplicate id %d", d.Name, apperrors.ErrInvalidInput, d.ID)
		}
		c.add(d)
	}
	return c, nil
}

func newEmpty(logger *slog.Logger) *Catalog {
	return &Catalog{
		byID:   make(map[int]int),
		logger: logger,
	}
}

func (c *Catalog) add(d Document) {
	c.byID[d.ID] = len(c.docs)
	c.docs = append(c.docs, d)
}

// Build scans dir non-recursively and catalogues every regular file whose
// extension is exactly "txt", following symlinks. IDs start at 1 in file-name
// order. A directory that cannot be listed yields an empty catalog and an IO
// failure. Unreadable files and a failed id map write are logged and skipped.
func Build(dir string, opts ...Option) (*Catalog, error) {
	o := options{
		writeIDMap: true,
		logger:     slog.Default().With("component", "catalog"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := newEmpty(o.logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.Error("error in initializing doc id map", "dir", dir, "error", err)
		return c, apperrors.IOFailure("reading document directory", dir, err)
	}

	nextID := 1
	for _, entry := range entries {
		if extension(entry.Name()) != "txt" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(entry, path) {
			continue
		}
		length, err := countTokens(path)
		if err != nil {
			c.logger.Error("skipping unreadable document", "path", path, "error", err)
			continue
		}
		c.add(Document{ID: nextID, Name: entry.Name(), Length: length})
		nextID++
	}
	c.logger.Info("catalog built", "dir", dir, "documents", len(c.docs))

	if o.writeIDMap {
		target := IDMapPath(dir)
		if err := c.WriteIDMap(target); err != nil {
			c.logger.Error("error writing document id map", "path", target, "error", err)
		}
	}
	return c, nil
}

// isRegularFile follows symlinks, so a link to a regular file counts. A
// dangling link is skipped.
func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IDMapPath is where Build writes the id map for a given document directory.
func IDMapPath(dir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(dir)), IDMapFileName)
}

func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

func countTokens(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return tokenizer.Scan(f, nil)
}

// LookupID returns the id of the document named name. Misses are logged, not
// fatal.
func (c *Catalog) LookupID(name string) (int, bool) {
	for _, d := range c.docs {
		if d.Name == name {
			return d.ID, true
		}
	}
	c.logger.Warn("doc id for this document not found", "name", name)
	return 0, false
}

func (c *Catalog) lookup(id int) (Document, error) {
	i, ok := c.byID[id]
	if !ok {
		return Document{}, fmt.Errorf("document %d: %w", id, apperrors.ErrNotFound)
	}
	return c.docs[i], nil
}

// Name returns the source file name of document id.
func (c *Catalog) Name(id int) (string, error) {
	d, err := c.lookup(id)
	return d.Name, err
}

// Length returns the token count of document id.
func (c *Catalog) Length(id int) (int, error) {
	d, err := c.lookup(id)
	return d.Length, err
}

// Contains reports whether id is catalogued.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Size() int {
	return len(c.docs)
}

// AverageLength is the arithmetic mean of all document lengths.
func (c *Catalog) AverageLength() (float64, error) {
	if len(c.docs) == 0 {
		return 0, fmt.Errorf("average document length: %w", apperrors.ErrEmptyCollection)
	}
	total := 0
	for _, d := range c.docs {
		total += d.Length
	}
	return float64(total) / float64(len(c.docs)), nil
}

// Documents returns a copy of the catalogued documents in id order.
func (c *Catalog) Documents() []Document {
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}
