package cli

import (
	"github.com/toyz/injectgen/internal/config"
)

// Config holds the configuration for one generation run
type Config struct {
	// Fixtures lists declaration documents, archives or directories to load.
	// A trailing "/..." is accepted and means the same as the directory itself.
	Fixtures []string

	// Options are the resolved generation options
	Options *config.Options

	// DryRun renders every artifact but writes nothing
	DryRun bool
}
