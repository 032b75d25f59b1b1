package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/injectgen/internal/models"
)

// Entry is one generated artifact and its originating declaration
type Entry struct {
	Round      uuid.UUID       `json:"round" yaml:"round"`
	Generated  string          `json:"generated" yaml:"generated"`
	Kind       models.PlanKind `json:"kind" yaml:"kind"`
	Source     string          `json:"source" yaml:"source"`
	File       string          `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int             `json:"line,omitempty" yaml:"line,omitempty"`
	RecordedAt time.Time       `json:"recorded_at" yaml:"recorded_at"`

	decl *models.Declaration
}

// auditRegistry implements the AuditRegistry interface
type auditRegistry struct {
	round   uuid.UUID
	entries map[string]Entry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewAuditRegistry creates an audit registry for a new round
func NewAuditRegistry() AuditRegistry {
	return NewAuditRegistryForRound(uuid.New())
}

// NewAuditRegistryForRound creates an audit registry stamped with round
func NewAuditRegistryForRound(round uuid.UUID) AuditRegistry {
	return &auditRegistry{
		round:   round,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Round returns the identity of the round
func (r *auditRegistry) Round() uuid.UUID {
	return r.round
}

// Record adds the artifact described by plan. Recording the same artifact twice for the
// same declaration is a no-op; a different declaration is an error.
func (r *auditRegistry) Record(plan *models.GenerationPlan, decl *models.Declaration) error {
	if plan == nil || plan.QualifiedName == "" {
		return fmt.Errorf("generated artifact name cannot be empty")
	}
	if decl == nil {
		return fmt.Errorf("originating declaration of %s cannot be nil", plan.QualifiedName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.entries[plan.QualifiedName]; exists {
		if existing.Source == decl.Name {
			return nil
		}
		return fmt.Errorf("artifact '%s' is already generated from '%s'", plan.QualifiedName, existing.Source)
	}

	r.entries[plan.QualifiedName] = Entry{
		Round:      r.round,
		Generated:  plan.QualifiedName,
		Kind:       plan.Kind,
		Source:     decl.Name,
		File:       decl.File,
		Line:       decl.Line,
		RecordedAt: r.now(),
		decl:       decl,
	}
	return nil
}

// OriginatingElement returns the declaration the generated artifact came from
func (r *auditRegistry) OriginatingElement(generated string) (*models.Declaration, bool) {
	entry, ok := r.Entry(generated)
	if !ok {
		return nil, false
	}
	return entry.decl, true
}

// Entry returns the audit entry of a generated artifact
func (r *auditRegistry) Entry(generated string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[generated]
	return entry, exists
}

// Entries returns every entry sorted by generated name
func (r *auditRegistry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Generated < entries[j].Generated
	})
	return entries
}

// Len returns the number of recorded artifacts
func (r *auditRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
