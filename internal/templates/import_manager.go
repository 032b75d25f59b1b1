package templates

import (
	"sort"
	"strings"
)

// ClassSplitter splits a fully-qualified class name into its package and its nesting path
type ClassSplitter func(fqcn string) (pkg string, simpleNames []string)

// ImportManager tracks the classes referenced by one generated file. A simple name is
// bound to the first class that claims it; later classes with the same simple name stay
// fully qualified.
type ImportManager struct {
	pkg     string
	split   ClassSplitter
	names   map[string]string // simple name -> fqcn of the top-level class
	imports map[string]bool
}

// NewImportManager creates an import manager for a file of package pkg
func NewImportManager(pkg string, split ClassSplitter) *ImportManager {
	return &ImportManager{
		pkg:     pkg,
		split:   split,
		names:   make(map[string]string),
		imports: make(map[string]bool),
	}
}

// Reserve binds simple names to classes of the file's own package, so they are never
// claimed by an import
func (im *ImportManager) Reserve(simpleNames ...string) {
	for _, name := range simpleNames {
		if name == "" {
			continue
		}
		if _, taken := im.names[name]; !taken {
			im.names[name] = qualify(im.pkg, name)
		}
	}
}

// Use returns how fqcn is written in the file and records its import when needed
func (im *ImportManager) Use(fqcn string) string {
	pkg, simple := im.split(fqcn)
	return im.UseParts(pkg, simple)
}

// UseParts is Use for an already split class name
func (im *ImportManager) UseParts(pkg string, simpleNames []string) string {
	if len(simpleNames) == 0 {
		return pkg
	}
	top := qualify(pkg, simpleNames[0])
	nested := strings.Join(simpleNames, ".")

	bound, taken := im.names[simpleNames[0]]
	switch {
	case !taken:
		im.names[simpleNames[0]] = top
	case bound != top:
		return qualify(pkg, nested)
	}

	if pkg != "" && pkg != im.pkg {
		im.imports[top] = true
	}
	return nested
}

// Imports returns the imported classes sorted
func (im *ImportManager) Imports() []string {
	out := make([]string, 0, len(im.imports))
	for imp := range im.imports {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// Clone creates a copy of the import manager
func (im *ImportManager) Clone() *ImportManager {
	clone := NewImportManager(im.pkg, im.split)
	for name, fqcn := range im.names {
		clone.names[name] = fqcn
	}
	for imp := range im.imports {
		clone.imports[imp] = true
	}
	return clone
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
