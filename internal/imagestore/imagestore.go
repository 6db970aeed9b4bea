// Package imagestore persists inline-encoded image payloads to disk and
// hands back URL references. Recipe writes carry images as base64 data URIs
// ("data:image/png;base64,...."); the core only ever stores the resulting
// URL, never the bytes.
package imagestore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// extensions maps the accepted data URI media types to file extensions.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes images under dir and returns URLs rooted at baseURL.
type Store struct {
	dir     string
	baseURL string
}

// New creates the store, making sure dir exists.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: creating media dir %s: %w", dir, err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save decodes a base64 data URI, writes the bytes to a new file named by a
// fresh xid, and returns the URL reference ("{baseURL}/{id}{ext}").
func (s *Store) Save(dataURI string) (string, error) {
	mediaType, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext, ok := extensions[mediaType]
	if !ok {
		return "", fmt.Errorf("imagestore: unsupported media type %q", mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("imagestore: decoding base64 payload: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("imagestore: empty image payload")
	}

	name := xid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: writing image %s: %w", name, err)
	}

	return s.baseURL + "/" + name, nil
}

// Dir returns the directory images are stored in, for the file server.
func (s *Store) Dir() string {
	return s.dir
}

// splitDataURI validates "data:<mediatype>;base64,<payload>" and returns
// the media type and payload.
func splitDataURI(uri string) (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("imagestore: not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("imagestore: malformed data URI")
	}

	mediaType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", "", fmt.Errorf("imagestore: data URI must be base64-encoded")
	}

	return mediaType, payload, nil
}
