package sh

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/physlab/physview.go/pkg/assets"
)

// CollectFiles gathers a local directory into an uploaded file set. The
// directory name becomes the leading path segment, so it names the
// robot.
func CollectFiles(dir string) ([]assets.UploadFile, error) {
	base := filepath.Base(filepath.Clean(dir))
	var files []assets.UploadFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, assets.UploadFile{
			Path: path.Join(base, filepath.ToSlash(rel)),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
