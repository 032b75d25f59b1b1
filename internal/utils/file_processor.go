package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Suffixes of generated artifact files
const (
	FactorySuffix        = "__Factory"
	MemberInjectorSuffix = "__MemberInjector"
)

// FileProcessor walks directory trees for declaration documents and generated artifacts
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// DocumentFileFilter matches declaration documents and bundles
func DocumentFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".yaml", ".yml", ".txtar":
			return true
		}
		return false
	}
}

// GeneratedFileFilter matches factories and member injectors in any output format
func GeneratedFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		return strings.HasSuffix(name, FactorySuffix) || strings.HasSuffix(name, MemberInjectorSuffix)
	}
}

// DefaultDirectoryFilter skips hidden and tooling directories
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"build":        true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// WalkFiles returns the files under rootDir accepted by options.FileFilter, in
// lexical order. rootDir itself is never filtered out; a plain file is matched directly.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if path == rootDir || options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})
	return matchedFiles, err
}

// CollectDocuments returns every declaration document under roots without duplicates
func (fp *FileProcessor) CollectDocuments(roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, root := range roots {
		root = filepath.Clean(root)
		if _, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", root, err)
		}
		matched, err := fp.WalkFiles(root, FileWalkOptions{
			FileFilter:      DocumentFileFilter(),
			DirectoryFilter: DefaultDirectoryFilter(),
		})
		if err != nil {
			return nil, WrapProcessError(fmt.Sprintf("directory %s", root), err)
		}
		for _, path := range matched {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}
	return files, nil
}

// CleanDirectories removes generated artifacts below baseDirs and returns the removed paths
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removedFiles []string

	for _, baseDir := range baseDirs {
		if baseDir == "" {
			baseDir = "."
		}
		if _, err := os.Stat(baseDir); os.IsNotExist(err) {
			continue
		}

		generated, err := fp.WalkFiles(baseDir, FileWalkOptions{
			FileFilter:      GeneratedFileFilter(),
			DirectoryFilter: DefaultDirectoryFilter(),
			SkipErrors:      true,
		})
		if err != nil {
			return removedFiles, WrapProcessError(fmt.Sprintf("directory clean %s", baseDir), err)
		}

		for _, path := range generated {
			if err := os.Remove(path); err != nil {
				return removedFiles, WrapProcessError(fmt.Sprintf("file removal %s", path), err)
			}
			fp.fileReader.InvalidateFile(path)
			removedFiles = append(removedFiles, path)
		}
	}
	return removedFiles, nil
}

// WriteFile writes content to path, creating parent directories
func (fp *FileProcessor) WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WrapCreateError(fmt.Sprintf("directory %s", filepath.Dir(path)), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fp.fileReader.InvalidateFile(path)
	return nil
}

// GetFileReader returns the underlying FileReader
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
