package parser

import "github.com/toyz/injectgen/internal/models"

// DeclarationLoader defines the interface for reading declaration documents into a table
type DeclarationLoader interface {
	Load(paths ...string) (*models.Table, error)
	LoadDocument(table *models.Table, name string, data []byte) error
	LoadArchive(table *models.Table, name string, data []byte) error
}
