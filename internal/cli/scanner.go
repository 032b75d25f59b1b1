package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/utils"
)

// DirectoryScanner expands fixture arguments into declaration documents
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(fileProcessor *utils.FileProcessor) *DirectoryScanner {
	if fileProcessor == nil {
		fileProcessor = utils.NewFileProcessor()
	}
	return &DirectoryScanner{
		fileProcessor: fileProcessor,
	}
}

// ScanFixtures resolves the provided paths and returns every declaration document below
// them. Go-style patterns like "./..." are accepted.
func (s *DirectoryScanner) ScanFixtures(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	cleanRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		cleanPath, err := filepath.Abs(trimRecursivePattern(root))
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", root), err)
		}
		cleanRoots = append(cleanRoots, cleanPath)
	}

	return s.fileProcessor.CollectDocuments(cleanRoots)
}

// trimRecursivePattern turns "dir/..." into "dir" and "./..." or "..." into "."
func trimRecursivePattern(path string) string {
	if path == "..." {
		return "."
	}
	if base, ok := strings.CutSuffix(path, "/..."); ok {
		if base == "" {
			return "."
		}
		return base
	}
	return path
}
