package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
)

// IDMapEntry is one element of the docId_Map.json array.
type IDMapEntry struct {
	DocID   int    `json:"docId"`
	DocName string `json:"docName"`
}

// IDMap returns the id to name pairs in id order.
func (c *Catalog) IDMap() []IDMapEntry {
	entries := make([]IDMapEntry, 0, len(c.docs))
	for _, d := range c.docs {
		entries = append(entries, IDMapEntry{DocID: d.ID, DocName: d.Name})
	}
	return entries
}

// WriteIDMap writes the id map as a two-space indented JSON array. The file
// is written to a temp path and renamed into place.
func (c *Catalog) WriteIDMap(path string) error {
	data, err := json.MarshalIndent(c.IDMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document id map: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.IOFailure("creating id map directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return apperrors.IOFailure("writing id map", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.IOFailure("renaming id map", path, err)
	}
	c.logger.Info("writing json data to file", "path", path, "documents", len(c.docs))
	return nil
}

// ReadIDMap parses a file written by WriteIDMap.
func ReadIDMap(path string) ([]IDMapEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.IOFailure("reading id map", path, err)
	}
	var entries []IDMapEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing id map %s: %w", path, err)
	}
	return entries, nil
}
