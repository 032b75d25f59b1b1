package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/injectgen/internal/config"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/generator"
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/templates"
)

// Artifact is one generated file, relative to the output directory
type Artifact struct {
	Path          string // slash-separated
	QualifiedName string
	Source        string
	Content       []byte
}

// Emitter turns generation plans into artifacts in the configured output format
type Emitter struct {
	format   string
	renderer *templates.Renderer
}

// NewEmitter creates an emitter for format. Source output needs the table to split class
// names into package and nesting path.
func NewEmitter(table *models.Table, format, version string) (*Emitter, error) {
	e := &Emitter{format: format}
	switch format {
	case config.FormatSource, "":
		e.format = config.FormatSource
		split := func(fqcn string) (string, []string) {
			return generator.SplitClassName(table, fqcn)
		}
		renderer, err := templates.NewRenderer(split, templates.WithVersion(version))
		if err != nil {
			return nil, err
		}
		e.renderer = renderer
	case config.FormatYAML, config.FormatJSON:
	default:
		return nil, errors.Newf(errors.ConfigurationErrorCode, "unknown output format %q", format).
			WithSuggestion("Use one of: source, yaml, json")
	}
	return e, nil
}

// Format returns the output format
func (e *Emitter) Format() string {
	return e.format
}

// Emit converts plans in order and stops at the first failure
func (e *Emitter) Emit(plans []*models.GenerationPlan) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(plans))
	for _, plan := range plans {
		artifact, err := e.emit(plan)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func (e *Emitter) emit(plan *models.GenerationPlan) (Artifact, error) {
	if e.renderer != nil {
		file, err := e.renderer.Render(plan)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{
			Path:          file.Path,
			QualifiedName: file.QualifiedName,
			Source:        file.Source,
			Content:       []byte(file.Content),
		}, nil
	}

	content, err := encodePlan(plan, e.format)
	if err != nil {
		return Artifact{}, errors.WrapGenerateError(plan.QualifiedName, err)
	}
	return Artifact{
		Path:          planPath(plan, e.format),
		QualifiedName: plan.QualifiedName,
		Source:        plan.Source,
		Content:       content,
	}, nil
}

// encodePlan serializes a plan as YAML or indented JSON
func encodePlan(plan *models.GenerationPlan, format string) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case config.FormatJSON:
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown plan format %q", format)
}

func planPath(plan *models.GenerationPlan, format string) string {
	ext := "." + format
	if plan.Package == "" {
		return plan.Name + ext
	}
	return strings.ReplaceAll(plan.Package, ".", "/") + "/" + plan.Name + ext
}
