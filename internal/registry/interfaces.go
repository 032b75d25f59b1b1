package registry

import (
	"github.com/google/uuid"

	"github.com/toyz/injectgen/internal/models"
)

// AuditRegistry defines the interface for tracking which declaration every generated
// artifact of a round came from
type AuditRegistry interface {
	Round() uuid.UUID
	Record(plan *models.GenerationPlan, decl *models.Declaration) error
	OriginatingElement(generated string) (*models.Declaration, bool)
	Entry(generated string) (Entry, bool)
	Entries() []Entry
	Len() int
}
