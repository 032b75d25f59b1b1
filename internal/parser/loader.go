package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/txtar"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/utils"
)

// ReadFunc reads one document file
type ReadFunc func(path string) ([]byte, error)

// Loader reads declaration documents into a declaration table
type Loader struct {
	expressions *annotations.ExpressionParser
	readFile    ReadFunc
	files       *utils.FileProcessor
	logger      *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLogger sets the structured logger used for debug traces
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithReadFunc replaces os.ReadFile
func WithReadFunc(read ReadFunc) LoaderOption {
	return func(l *Loader) {
		if read != nil {
			l.readFile = read
		}
	}
}

// WithFileProcessor shares a file processor and reads through its cached FileReader
func WithFileProcessor(files *utils.FileProcessor) LoaderOption {
	return func(l *Loader) {
		if files != nil {
			l.files = files
			l.readFile = files.GetFileReader().ReadFile
		}
	}
}

// NewLoader creates a new declaration loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		expressions: annotations.NewExpressionParser(),
		readFile:    os.ReadFile,
		files:       utils.NewFileProcessor(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ DeclarationLoader = (*Loader)(nil)

// Load reads every document under paths into a new, frozen table. Directories are
// walked recursively for .yaml, .yml and .txtar files.
func (l *Loader) Load(paths ...string) (*models.Table, error) {
	files, err := l.files.CollectDocuments(paths)
	if err != nil {
		return nil, err
	}

	table := models.NewTable()
	for _, file := range files {
		data, err := l.readFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read declaration file %s: %w", file, err)
		}
		if strings.EqualFold(filepath.Ext(file), ".txtar") {
			err = l.LoadArchive(table, file, data)
		} else {
			err = l.LoadDocument(table, file, data)
		}
		if err != nil {
			return nil, err
		}
	}

	table.Freeze()
	l.logger.Debug("declarations loaded",
		zap.Int("files", len(files)),
		zap.Int("declarations", table.Len()))
	return table, nil
}

// LoadArchive loads every YAML member of a txtar archive
func (l *Loader) LoadArchive(table *models.Table, name string, data []byte) error {
	archive := txtar.Parse(data)
	for _, file := range archive.Files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if ext != ".yaml" && ext != ".yml" {
			l.logger.Debug("skipping archive member", zap.String("archive", name), zap.String("member", file.Name))
			continue
		}
		if err := l.LoadDocument(table, name+"/"+file.Name, file.Data); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocument loads every YAML document of data into table
func (l *Loader) LoadDocument(table *models.Table, name string, data []byte) error {
	reporter := NewDocumentErrorReporter(name)
	docs, err := decodeDocuments(data)
	if err != nil {
		return reporter.ReportSyntaxError(err)
	}

	for _, doc := range docs {
		b := &documentBuilder{
			loader:   l,
			table:    table,
			file:     name,
			names:    newFileNames(doc),
			reporter: reporter,
		}
		for _, decl := range doc.Declarations {
			if err := b.add(decl, nil, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// documentBuilder converts one document into table declarations
type documentBuilder struct {
	loader   *Loader
	table    *models.Table
	file     string
	names    *fileNames
	reporter *DocumentErrorReporter
}

func (b *documentBuilder) add(doc declarationDoc, parent *models.Declaration, outerParams map[string]bool) error {
	if strings.TrimSpace(doc.Name) == "" {
		return b.reporter.ReportMissingName("declaration", doc.Line)
	}

	kind, err := models.ParseDeclKind(doc.Kind)
	if err != nil {
		return b.reporter.ReportInvalidKind(doc.Name, doc.Kind, doc.Line)
	}
	visibility, err := models.ParseVisibility(doc.Visibility)
	if err != nil {
		return b.reporter.ReportInvalidVisibility(doc.Name, doc.Visibility, doc.Line)
	}

	decl := &models.Declaration{
		Package:    b.names.pkg,
		Kind:       kind,
		Visibility: visibility,
		Abstract:   doc.Abstract || kind == models.KindInterface,
		Inner:      doc.Inner,
		Enclosing:  models.NoDecl,
		Retention:  doc.Retention,
		File:       b.file,
		Line:       doc.Line,
	}
	if parent != nil {
		decl.Enclosing = parent.ID
		decl.SimpleNames = append(append([]string(nil), parent.SimpleNames...), doc.Name)
	} else {
		decl.SimpleNames = strings.Split(doc.Name, ".")
	}
	decl.Name = qualify(decl.Package, strings.Join(decl.SimpleNames, "."))

	scope := make(map[string]bool, len(outerParams)+len(doc.TypeParams))
	for name := range outerParams {
		scope[name] = true
	}
	for _, tp := range doc.TypeParams {
		scope[tp.Name] = true
	}
	resolve := b.names.resolver(scope)

	for _, tp := range doc.TypeParams {
		param := models.TypeParam{Name: tp.Name}
		for _, bound := range tp.Bounds {
			ref, err := b.typeRef(decl.Name+"<"+tp.Name+">", bound, doc.Line, resolve)
			if err != nil {
				return err
			}
			param.Bounds = append(param.Bounds, ref)
		}
		decl.TypeParams = append(decl.TypeParams, param)
	}

	if decl.Annotations, err = b.annotationList(decl.Name, doc.Annotations, doc.Line, resolve); err != nil {
		return err
	}
	if doc.Extends != "" {
		if decl.Super, err = b.typeRef(decl.Name, doc.Extends, doc.Line, resolve); err != nil {
			return err
		}
	}
	if doc.AliasOf != "" {
		if decl.AliasOf, err = b.typeRef(decl.Name, doc.AliasOf, doc.Line, resolve); err != nil {
			return err
		}
	}

	for _, c := range doc.Constructors {
		ctor, err := b.constructor(decl.Name, c, resolve)
		if err != nil {
			return err
		}
		decl.Constructors = append(decl.Constructors, ctor)
	}
	for _, f := range doc.Fields {
		field, err := b.field(decl.Name, f, resolve)
		if err != nil {
			return err
		}
		decl.Fields = append(decl.Fields, field)
	}
	for _, m := range doc.Methods {
		method, err := b.method(decl.Name, m, resolve)
		if err != nil {
			return err
		}
		decl.Methods = append(decl.Methods, method)
	}

	if _, err := b.table.Add(decl); err != nil {
		return b.reporter.ReportDuplicate(decl.Name, doc.Line, err)
	}

	for _, nested := range doc.Nested {
		// static nested classes do not see the type parameters of their outer class
		params := scope
		if !nested.Inner {
			params = nil
		}
		if err := b.add(nested, decl, params); err != nil {
			return err
		}
	}
	return nil
}

func (b *documentBuilder) constructor(owner string, doc constructorDoc, resolve annotations.NameResolver) (models.Constructor, error) {
	element := owner + ".<init>"
	visibility, err := models.ParseVisibility(doc.Visibility)
	if err != nil {
		return models.Constructor{}, b.reporter.ReportInvalidVisibility(element, doc.Visibility, doc.Line)
	}
	ctor := models.Constructor{
		Visibility: visibility,
		Throws:     b.throws(doc.Throws),
		Line:       doc.Line,
	}
	if ctor.Annotations, err = b.annotationList(element, doc.Annotations, doc.Line, resolve); err != nil {
		return models.Constructor{}, err
	}
	if ctor.Parameters, err = b.parameters(element, doc.Params, doc.Line, resolve); err != nil {
		return models.Constructor{}, err
	}
	return ctor, nil
}

func (b *documentBuilder) field(owner string, doc fieldDoc, resolve annotations.NameResolver) (models.Field, error) {
	if doc.Name == "" {
		return models.Field{}, b.reporter.ReportMissingName("field of "+owner, doc.Line)
	}
	element := owner + "#" + doc.Name
	visibility, err := models.ParseVisibility(doc.Visibility)
	if err != nil {
		return models.Field{}, b.reporter.ReportInvalidVisibility(element, doc.Visibility, doc.Line)
	}
	field := models.Field{Name: doc.Name, Visibility: visibility, Line: doc.Line}
	if field.Type, err = b.typeRef(element, doc.Type, doc.Line, resolve); err != nil {
		return models.Field{}, err
	}
	if field.Annotations, err = b.annotationList(element, doc.Annotations, doc.Line, resolve); err != nil {
		return models.Field{}, err
	}
	return field, nil
}

func (b *documentBuilder) method(owner string, doc methodDoc, resolve annotations.NameResolver) (models.Method, error) {
	if doc.Name == "" {
		return models.Method{}, b.reporter.ReportMissingName("method of "+owner, doc.Line)
	}
	element := owner + "#" + doc.Name
	visibility, err := models.ParseVisibility(doc.Visibility)
	if err != nil {
		return models.Method{}, b.reporter.ReportInvalidVisibility(element, doc.Visibility, doc.Line)
	}
	method := models.Method{
		Name:       doc.Name,
		Visibility: visibility,
		Throws:     b.throws(doc.Throws),
		Line:       doc.Line,
	}
	if method.Annotations, err = b.annotationList(element, doc.Annotations, doc.Line, resolve); err != nil {
		return models.Method{}, err
	}
	if method.Parameters, err = b.parameters(element, doc.Params, doc.Line, resolve); err != nil {
		return models.Method{}, err
	}
	return method, nil
}

func (b *documentBuilder) parameters(element string, docs []paramDoc, line int, resolve annotations.NameResolver) ([]models.Parameter, error) {
	var params []models.Parameter
	for i, doc := range docs {
		name := doc.Name
		if name == "" {
			name = fmt.Sprintf("p%d", i)
		}
		param := models.Parameter{Name: name}
		var err error
		if param.Type, err = b.typeRef(element+"("+name+")", doc.Type, line, resolve); err != nil {
			return nil, err
		}
		if param.Annotations, err = b.annotationList(element+"("+name+")", doc.Annotations, line, resolve); err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

func (b *documentBuilder) typeRef(element, expr string, line int, resolve annotations.NameResolver) (*models.TypeRef, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, b.reporter.ReportInvalidExpression(element, line, fmt.Errorf("missing type"))
	}
	ref, err := b.loader.expressions.ParseType(expr, resolve)
	if err != nil {
		return nil, b.reporter.ReportInvalidExpression(element, line, err)
	}
	return ref, nil
}

func (b *documentBuilder) annotationList(element string, exprs []string, line int, resolve annotations.NameResolver) ([]models.Annotation, error) {
	var out []models.Annotation
	for _, expr := range exprs {
		annotation, err := b.loader.expressions.ParseAnnotation(expr, resolve)
		if err != nil {
			return nil, b.reporter.ReportInvalidExpression(element, line, err)
		}
		out = append(out, annotation)
	}
	return out, nil
}

// throws resolves declared failure classes
func (b *documentBuilder) throws(names []string) []string {
	var out []string
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, b.names.resolve(name))
		}
	}
	return out
}
