package parser

import (
	"strings"
	"unicode"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/models"
)

// builtins are resolved without an import
var builtins = map[string]string{
	"Unit":             "kotlin.Unit",
	"Boolean":          "kotlin.Boolean",
	"Byte":             "kotlin.Byte",
	"Short":            "kotlin.Short",
	"Int":              "kotlin.Int",
	"Long":             "kotlin.Long",
	"Char":             "kotlin.Char",
	"Float":            "kotlin.Float",
	"Double":           "kotlin.Double",
	"Comparable":       "kotlin.Comparable",
	"Throwable":        "kotlin.Throwable",
	"Exception":        "java.lang.Exception",
	"RuntimeException": "java.lang.RuntimeException",
	"List":             "kotlin.collections.List",
	"Map":              "kotlin.collections.Map",
	"Set":              "kotlin.collections.Set",
}

// fileNames resolves names written in one document
type fileNames struct {
	pkg      string
	imports  map[string]string // simple name -> fqcn
	declared map[string]string // relative path or unique nested simple name -> fqcn
}

func newFileNames(doc document) *fileNames {
	names := &fileNames{
		pkg:      doc.Package,
		imports:  make(map[string]string),
		declared: make(map[string]string),
	}
	for _, imp := range doc.Imports {
		imp = strings.TrimSpace(imp)
		if imp != "" {
			names.imports[models.SimpleNameOf(imp)] = imp
		}
	}

	ambiguous := make(map[string]bool)
	var collect func(prefix string, decls []declarationDoc, depth int)
	collect = func(prefix string, decls []declarationDoc, depth int) {
		for _, d := range decls {
			relative := d.Name
			if prefix != "" {
				relative = prefix + "." + d.Name
			}
			fqcn := qualify(doc.Package, relative)
			names.declared[relative] = fqcn
			if depth > 0 {
				if existing, ok := names.declared[d.Name]; ok && existing != fqcn {
					ambiguous[d.Name] = true
				} else if !ok {
					names.declared[d.Name] = fqcn
				}
			}
			collect(relative, d.Nested, depth+1)
		}
	}
	collect("", doc.Declarations, 0)

	for name := range ambiguous {
		if _, topLevel := findTopLevel(doc.Declarations, name); !topLevel {
			delete(names.declared, name)
		}
	}
	return names
}

func findTopLevel(decls []declarationDoc, name string) (declarationDoc, bool) {
	for _, d := range decls {
		if d.Name == name {
			return d, true
		}
	}
	return declarationDoc{}, false
}

// resolver returns a NameResolver that sees typeParams first
func (n *fileNames) resolver(typeParams map[string]bool) annotations.NameResolver {
	return func(name string) (string, bool) {
		if typeParams[name] {
			return name, true
		}
		return n.resolve(name), false
	}
}

// resolve maps a class name as written to its fully-qualified name
func (n *fileNames) resolve(name string) string {
	if fqcn, ok := n.declared[name]; ok {
		if _, imported := n.imports[name]; !imported {
			return fqcn
		}
	}

	first, rest, dotted := strings.Cut(name, ".")
	if fqcn, ok := n.imports[first]; ok {
		if dotted {
			return fqcn + "." + rest
		}
		return fqcn
	}
	if dotted {
		if startsUpper(first) {
			return qualify(n.pkg, name)
		}
		return name
	}

	if fqcn, ok := annotations.WellKnown(name); ok {
		return fqcn
	}
	if fqcn, ok := builtins[name]; ok {
		return fqcn
	}
	if models.IsPrimitiveName(name) {
		return name
	}
	return qualify(n.pkg, name)
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
