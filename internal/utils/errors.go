package utils

import "fmt"

// WrapProcessError wraps an error with a "failed to process" message
func WrapProcessError(item string, err error) error {
	return fmt.Errorf("failed to process %s: %w", item, err)
}

// WrapLoadError wraps an error with a "failed to load" message
func WrapLoadError(item string, err error) error {
	return fmt.Errorf("failed to load %s: %w", item, err)
}

// WrapCreateError wraps an error with a "failed to create" message
func WrapCreateError(item string, err error) error {
	return fmt.Errorf("failed to create %s: %w", item, err)
}
