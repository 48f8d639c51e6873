package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/klauspost/compress/zstd"
)

// Write serialises entries as a JSON array indented with two spaces, one
// element at a time.
func Write(w io.Writer, entries []TermEntry) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, entry := range entries {
		data, err := json.MarshalIndent(entry, "  ", "  ")
		if err != nil {
			return fmt.Errorf("marshaling term %q: %w", entry.Term, err)
		}
		sep := "\n  "
		if i > 0 {
			sep = ",\n  "
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing term %q: %w", entry.Term, err)
		}
	}
	if len(entries) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

// WriteFile atomically writes entries to path. It writes to a .tmp file first
// and renames on success. A ".zst" suffix selects zstd compression.
func WriteFile(path string, entries []TermEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.IOFailure("creating index directory", filepath.Dir(path), err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return apperrors.IOFailure("creating temp index file", tmpPath, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *zstd.Encoder
	if strings.HasSuffix(path, CompressedSuffix) {
		zw, err = zstd.NewWriter(bw)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		w = zw
	}
	if err := Write(w, entries); err != nil {
		return apperrors.IOFailure("writing index", tmpPath, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return apperrors.IOFailure("finishing compressed index", tmpPath, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return apperrors.IOFailure("flushing index", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		return apperrors.IOFailure("syncing index file", tmpPath, err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.IOFailure("renaming index file", path, err)
	}
	return nil
}
