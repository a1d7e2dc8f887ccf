// Package loader enumerates corpus files and decodes them to text.
package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dgallion1/corpuslint/internal/parser"
)

// DecodeError marks a file that could not be decoded as text. The scan
// reports and skips such files, it never aborts on them.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

// Walk returns the relative, slash-separated paths of all supported files
// under root, sorted so downstream output never depends on directory
// listing order. A missing or unreadable root is an invocation error.
func Walk(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !parser.IsSupportedExtension(name) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadFile reads and decodes one corpus file. UTF-8 passes through;
// UTF-16 with a BOM is transcoded; anything else is a DecodeError.
// maxBytes of 0 means no limit.
func ReadFile(root, rel string, maxBytes int64) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	if maxBytes > 0 {
		info, err := os.Stat(full)
		if err != nil {
			return "", &DecodeError{Path: rel, Reason: err.Error()}
		}
		if info.Size() > maxBytes {
			return "", &DecodeError{Path: rel, Reason: fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), maxBytes)}
		}
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return "", &DecodeError{Path: rel, Reason: err.Error()}
	}
	return Decode(rel, raw)
}

// Decode turns raw file bytes into text or fails with a DecodeError.
func Decode(rel string, raw []byte) (string, error) {
	if hasUTF16BOM(raw) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", &DecodeError{Path: rel, Reason: "invalid UTF-16: " + err.Error()}
		}
		raw = out
	}

	// Strip a UTF-8 BOM if present.
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(raw) {
		return "", &DecodeError{Path: rel, Reason: "not valid UTF-8"}
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", &DecodeError{Path: rel, Reason: "binary content (NUL byte)"}
	}
	return string(raw), nil
}

func hasUTF16BOM(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return (b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE)
}
