package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Disk stores photos as files in a directory served under URLPrefix.
type Disk struct {
	Dir       string
	URLPrefix string
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Disk{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Put writes body to Dir/key.
func (d *Disk) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	name := filepath.Base(key)
	f, err := os.OpenFile(filepath.Join(d.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return d.URLPrefix + "/" + name, nil
}

// Delete removes the file behind a path produced by Put.
func (d *Disk) Delete(_ context.Context, p string) error {
	name, ok := strings.CutPrefix(p, d.URLPrefix+"/")
	if !ok || name == "" {
		return fmt.Errorf("path %q is not under %s", p, d.URLPrefix)
	}
	// Only the final element is honored so a stored path cannot escape Dir.
	if err := os.Remove(filepath.Join(d.Dir, path.Base(name))); err != nil {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// Handler serves the stored files; mount it at URLPrefix.
func (d *Disk) Handler() http.Handler {
	return http.StripPrefix(d.URLPrefix+"/", http.FileServer(filesOnly{http.Dir(d.Dir)}))
}

// filesOnly reports directories as missing so they are never listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
