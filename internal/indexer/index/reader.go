package index

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks index files stored zstd-compressed.
const CompressedSuffix = ".zst"

// Load decodes a JSON array of term entries from r, one element at a time.
func Load(r io.Reader) (*Index, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, decodeError("reading index start", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: index must be a JSON array, got %v", apperrors.ErrInvalidInput, tok)
	}
	idx := newIndex()
	for dec.More() {
		var entry TermEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, decodeError(fmt.Sprintf("decoding term entry %d", idx.TermCount()), err)
		}
		if err := idx.add(entry); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, decodeError("reading index end", err)
	}
	return idx, nil
}

// decodeError classifies a decoder failure. Malformed or truncated JSON is
// ErrInvalidInput; anything else came from the underlying reader.
func decodeError(op string, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrInvalidInput, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// LoadFile opens path and loads it with Load. Files ending in ".zst" are
// decompressed first. Any failure names the path: content that does not
// parse is ErrInvalidInput, and failures to open or read are IO failures.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.IOFailure("opening index file", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, CompressedSuffix) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, apperrors.IOFailure("opening compressed index", path, err)
		}
		defer zr.Close()
		r = zr
	}
	idx, err := Load(r)
	if errors.Is(err, apperrors.ErrInvalidInput) {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}
	if err != nil {
		return nil, apperrors.IOFailure("reading index", path, err)
	}
	return idx, nil
}
