package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

//go:embed all:templates
var templateFS embed.FS

// templateName maps a dialect name or alias onto its template directory.
func templateName(dialect string) (string, error) {
	name := core.NormalizeDialect(dialect)
	if _, err := fs.Stat(templateFS, path.Join("templates", name)); err != nil {
		return "", fmt.Errorf("no config template for dialect %q (available: %v)", dialect, listTemplates())
	}
	return name, nil
}

// listTemplates returns the template names (sorted).
func listTemplates() []string {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// copyTemplate copies an embedded template directory to the target path.
// Existing files are skipped unless force is set. Returns the files written.
func copyTemplate(name, targetDir string, force bool) ([]string, error) {
	root := path.Join("templates", name)
	var written []string

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := p[len(root)+1:]
		targetPath := filepath.Join(targetDir, filepath.FromSlash(rel))

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0750); err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})

	return written, err
}
