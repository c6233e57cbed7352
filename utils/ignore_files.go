package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName lists patterns of staged paths kept out of the diff and the prompt.
const IgnoreFileName = ".commitgpt-ignore"

// GetIgnorePatterns reads the patterns from the ignore file in the repository root.
// If the file does not exist, it returns an empty pattern list.
func GetIgnorePatterns(repoRoot string) ([]string, error) {
	ignorePath := filepath.Join(repoRoot, IgnoreFileName)

	content, err := os.ReadFile(ignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsIgnored checks if a slash-separated repository path matches any of the patterns.
// Patterns without a slash also match against the base name, patterns ending in "/" match a directory prefix.
func IsIgnored(filePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(filePath, pattern) || strings.Contains(filePath, "/"+pattern) {
				return true
			}
			continue
		}
		if match, _ := path.Match(pattern, filePath); match {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if match, _ := path.Match(pattern, path.Base(filePath)); match {
				return true
			}
		}
	}
	return false
}

// FilterIgnored keeps the order of files and drops the ignored ones.
func FilterIgnored(files []string, patterns []string) (kept []string, ignored []string) {
	if len(patterns) == 0 {
		return files, nil
	}
	for _, file := range files {
		if IsIgnored(file, patterns) {
			ignored = append(ignored, file)
			continue
		}
		kept = append(kept, file)
	}
	return kept, ignored
}
