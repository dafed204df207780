package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
)

// ListDocuments walks root and returns the paths of every accepted document
// file in lexical order. Hidden files and directories are skipped. A root
// that does not exist or cannot be walked is a load failure; an empty result
// is not an error here, the caller decides what an empty batch means.
func ListDocuments(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, common.NewAppError("SOURCE_ERROR", "input directory is required", common.ErrLoadFailure)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, common.NewAppError("SOURCE_ERROR", fmt.Sprintf("walk %s: %v", root, err), common.ErrLoadFailure)
	}
	return paths, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
