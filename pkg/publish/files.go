package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsimansk/syndesis-rest/pkg/pathutil"
)

// writeFiles materializes the file set under the working directory,
// creating parent directories as needed and overwriting existing
// files. Paths that would resolve outside the working directory are
// rejected before anything is written.
func writeFiles(workDir string, files map[string][]byte) error {
	for path, content := range files {
		dest, err := pathutil.ResolveWithin(workDir, path)
		if err != nil {
			return wrapErr(KindStaging, err)
		}

		parent := filepath.Dir(dest)
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return wrapErr(KindStaging, fmt.Errorf("cannot create directory %s: %w", parent, err))
		}

		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return wrapErr(KindStaging, fmt.Errorf("cannot write %s: %w", path, err))
		}
	}
	return nil
}
