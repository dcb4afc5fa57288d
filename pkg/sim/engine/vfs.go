package engine

import (
	"fmt"
	iofs "io/fs"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

// FileSystem is the engine's private hierarchical filesystem. Scene
// definitions and assets are staged here before the engine resolves
// them; nothing outside the engine reads these files directly.
type FileSystem struct {
	fs *mem.FS
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() (*FileSystem, error) {
	fsys, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return &FileSystem{fs: fsys}, nil
}

// normalize converts an external slash path into an fs-rooted path.
func normalize(p string) string {
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// WriteFile writes data at p, creating parent directories as needed and
// replacing any previous content.
func (f *FileSystem) WriteFile(p string, data []byte) error {
	p = normalize(p)
	if dir := path.Dir(p); dir != "." {
		if err := hackpadfs.MkdirAll(f.fs, dir, 0755); err != nil {
			return fmt.Errorf("vfs: mkdir %s: %w", dir, err)
		}
	}
	if err := hackpadfs.WriteFullFile(f.fs, p, data, 0644); err != nil {
		return fmt.Errorf("vfs: write %s: %w", p, err)
	}
	return nil
}

// ReadFile reads the content at p.
func (f *FileSystem) ReadFile(p string) ([]byte, error) {
	data, err := iofs.ReadFile(f.fs, normalize(p))
	if err != nil {
		return nil, fmt.Errorf("vfs: read %s: %w", p, err)
	}
	return data, nil
}

// Exists reports whether p names a file or directory.
func (f *FileSystem) Exists(p string) bool {
	_, err := iofs.Stat(f.fs, normalize(p))
	return err == nil
}

// RemoveAll removes p and, when it is a directory, everything below it.
// Removing a path that does not exist is not an error.
func (f *FileSystem) RemoveAll(p string) error {
	return f.removeAll(normalize(p))
}

func (f *FileSystem) removeAll(p string) error {
	info, err := iofs.Stat(f.fs, p)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		entries, err := iofs.ReadDir(f.fs, p)
		if err != nil {
			return fmt.Errorf("vfs: readdir %s: %w", p, err)
		}
		for _, entry := range entries {
			if err := f.removeAll(path.Join(p, entry.Name())); err != nil {
				return err
			}
		}
	}
	if p == "." {
		return nil
	}
	if err := hackpadfs.Remove(f.fs, p); err != nil {
		return fmt.Errorf("vfs: remove %s: %w", p, err)
	}
	return nil
}

// Snapshot returns all files below prefix keyed by full path.
func (f *FileSystem) Snapshot(prefix string) (map[string][]byte, error) {
	root := normalize(prefix)
	out := make(map[string][]byte)
	if _, err := iofs.Stat(f.fs, root); err != nil {
		return out, nil
	}
	err := iofs.WalkDir(f.fs, root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := iofs.ReadFile(f.fs, p)
		if err != nil {
			return err
		}
		out[p] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vfs: walk %s: %w", prefix, err)
	}
	return out, nil
}
