package generator

import (
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/resolver"
)

// PlanGenerator defines the interface for turning resolution results into generation plans
type PlanGenerator interface {
	Generate(result *resolver.Result) ([]*models.GenerationPlan, error)
	FactoryPlan(target *models.ConstructorInjectionTarget) (*models.GenerationPlan, error)
	MemberInjectorPlan(target *models.MemberInjectionTarget) (*models.GenerationPlan, error)
}

var _ PlanGenerator = (*Generator)(nil)
