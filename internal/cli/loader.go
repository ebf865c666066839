package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// discoverScenarioFiles resolves a mix of scenario files and directories
// into a sorted list of YAML scenario paths. Directories are scanned
// non-recursively for *.yaml and *.yml files.
func discoverScenarioFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
				files = append(files, filepath.Join(p, name))
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files found")
	}

	sort.Strings(files)
	return files, nil
}
