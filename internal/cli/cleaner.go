package cli

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/injectgen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner(fileProcessor *utils.FileProcessor) *Cleaner {
	if fileProcessor == nil {
		fileProcessor = utils.NewFileProcessor()
	}
	return &Cleaner{
		fileProcessor: fileProcessor,
	}
}

// CleanGeneratedFiles removes every __Factory and __MemberInjector artifact below the
// specified directories and returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	if len(directories) == 0 {
		directories = []string{"."}
	}

	baseDirs := make([]string, 0, len(directories))
	for _, dir := range directories {
		baseDirs = append(baseDirs, filepath.Clean(trimRecursivePattern(dir)))
	}

	removed, err := c.fileProcessor.CleanDirectories(baseDirs)
	if err != nil {
		return removed, fmt.Errorf("failed to clean generated files: %w", err)
	}
	return removed, nil
}
