// Package fsutil maps fetched URLs onto a mirrored directory tree and writes
// files whole, so an interrupted run never leaves a truncated artifact.
package fsutil

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const indexFile = "index.html"

var placeholders = strings.NewReplacer("%s", "x", "%d", "0")

// MirrorPath returns where rawURL is stored under root: the host becomes
// the first directory, the URL path the rest, and the raw query is kept as
// a "?query" suffix on the file name. Paths ending in "/" map to index.html.
func MirrorPath(root, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %s has no host", rawURL)
	}

	dir, name := splitURLPath(u.Path)
	if u.RawQuery != "" {
		name += "?" + u.RawQuery
	}

	return filepath.Join(root, u.Host, filepath.FromSlash(dir), name), nil
}

// MirrorGlob returns a glob matching every file MirrorPath produces for the
// URL template (a URL with one %s or %d verb in its query).
func MirrorGlob(root, template string) (string, error) {
	u, err := url.Parse(placeholders.Replace(template))
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", template, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("template %s has no host", template)
	}

	dir, name := splitURLPath(u.Path)
	return filepath.Join(root, u.Host, filepath.FromSlash(dir), name+"*"), nil
}

func splitURLPath(p string) (string, string) {
	trailing := p == "" || strings.HasSuffix(p, "/")
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if trailing {
		return cleaned, indexFile
	}
	return path.Dir(cleaned), path.Base(cleaned)
}

// WriteFileAtomic writes data to a temp file next to name and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("renaming into %s: %w", name, err)
	}
	return nil
}
