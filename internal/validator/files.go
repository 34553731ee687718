package validator

import (
	"context"
	"os"
	"path/filepath"
)

var (
	// RequiredFiles must exist under the deployment root.
	RequiredFiles = []string{
		filepath.Join("backend", "package.json"),
		filepath.Join("backend", ".env"),
		filepath.Join("backend", "server.js"),
	}
	// OptionalFiles belong to the frontend, which backend-only installs do not have.
	OptionalFiles = []string{
		filepath.Join("frontend", "package.json"),
		filepath.Join("frontend", "index.html"),
	}
)

func (v *Validator) checkFileStructure(_ context.Context) bool {
	for _, rel := range RequiredFiles {
		path := filepath.Join(v.dep.BasePath, rel)
		if !exists(path) {
			v.fail("Required file missing: %s", path)
			return false
		}
	}

	for _, rel := range OptionalFiles {
		path := filepath.Join(v.dep.BasePath, rel)
		if !exists(path) {
			v.warn("Optional file missing: %s (non-critical)", path)
		}
	}

	v.pass("File structure is complete")
	return true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
