package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileReader reads declaration documents and go.mod files, caching content until the file changes
type FileReader struct {
	contentCache *Cache[string, []byte]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, []byte](),
	}
}

// ReadFile returns the content of filePath. Callers must not modify the returned slice.
func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	cleanPath, err := cleanFilePath(filePath)
	if err != nil {
		return nil, err
	}

	if cached, exists := fr.contentCache.GetWithFileValidation(cleanPath, cleanPath); exists {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, WrapLoadError("file "+filepath.Base(cleanPath), err)
	}

	// a file removed between read and stat is simply not cached
	_ = fr.contentCache.SetWithFileInfo(cleanPath, content, cleanPath)
	return content, nil
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	if cleanPath, err := cleanFilePath(filePath); err == nil {
		fr.contentCache.Delete(cleanPath)
	}
}

// CacheSize returns the number of cached files
func (fr *FileReader) CacheSize() int {
	return fr.contentCache.Size()
}

func cleanFilePath(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	cleanPath := filepath.Clean(filePath)
	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", cleanPath)
	}
	return cleanPath, nil
}
