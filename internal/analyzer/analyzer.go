package analyzer

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mcncl/pytyper/internal/config"
	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/models"
)

const (
	// RootClassName names the class representing the whole document.
	RootClassName = "Root"
	// RootArrayContext names the items of a document whose root is an array.
	RootArrayContext = "ImageData"
	// RootArrayField holds a root array on the Root class.
	RootArrayField = "data"
	// RootValueField holds a root scalar on the Root class.
	RootValueField = "value"
	// ItemSuffix is appended to the context name of an array's item class.
	ItemSuffix = "Item"
)

// Analyzer infers Pydantic class definitions from a JSON document.
// It holds no per-document state and may be shared between goroutines.
type Analyzer struct {
	// config holds configuration settings for analysis
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{config: config.NewConfig()}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{config: cfg}
}

// pass carries the registry and fingerprint cache of one Analyze call
// through the recursion.
type pass struct {
	registry *models.ClassRegistry
	seen     map[[sha256.Size]byte]string
	types    *TypeMapper
	names    *NameSanitizer
	maxDepth int
}

// Analyze walks the document and returns its classes in first-insertion
// order. The Root class is always present.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation) (*models.ClassRegistry, error) {
	p := &pass{
		registry: models.NewClassRegistry(),
		seen:     make(map[[sha256.Size]byte]string),
		types:    NewTypeMapper(a.config.Types.DetectIntegers),
		names:    NewNameSanitizer(a.config.Naming.PascalCaseClasses),
		maxDepth: a.config.Limits.MaxDepth,
	}
	if p.maxDepth <= 0 {
		p.maxDepth = config.DefaultMaxDepth
	}

	switch ir.Root.Kind {
	case models.Object:
		if _, err := p.analyzeObject(ir.Root, RootClassName, nil, 0); err != nil {
			return nil, err
		}
	case models.Array:
		// A root array has no key to name its items after, so the Root
		// class holds it in a single data field.
		listType, err := p.analyzeArray(ir.Root, RootArrayContext, nil, 0)
		if err != nil {
			return nil, err
		}
		p.registry.Put(models.ClassDef{
			Name:   RootClassName,
			Fields: []models.FieldDef{models.NewFieldDef(RootArrayField, listType)},
		})
	default:
		p.registry.Put(models.ClassDef{
			Name:   RootClassName,
			Fields: []models.FieldDef{models.NewFieldDef(RootValueField, p.types.Map(ir.Root))},
		})
	}

	root, _ := p.registry.Get(RootClassName)
	root.IsRoot = true
	p.registry.Put(root)

	slog.Debug("analyzed document", "root_kind", ir.Root.Kind.String(), "classes", p.registry.Len())
	return p.registry, nil
}

// analyzeNode returns the type of node. context is the sanitized name a
// class created for node would take.
func (p *pass) analyzeNode(node models.JSONValue, context string, path []string, depth int) (models.TypeRef, error) {
	if depth > p.maxDepth {
		return models.TypeRef{}, errors.NewDepthError(
			fmt.Sprintf("nesting exceeds %d levels at %s", p.maxDepth, formatPath(path)),
			errors.ErrDepthExceeded,
		)
	}

	switch node.Kind {
	case models.Null, models.Bool, models.Number, models.String:
		return p.types.Map(node), nil
	case models.Array:
		return p.analyzeArray(node, context, path, depth)
	case models.Object:
		name, err := p.analyzeObject(node, context, path, depth)
		if err != nil {
			return models.TypeRef{}, err
		}
		return models.ClassRef(name), nil
	default:
		return models.Scalar(AnyType), nil
	}
}

// analyzeArray types an array from its first element only.
func (p *pass) analyzeArray(arr models.JSONValue, context string, path []string, depth int) (models.TypeRef, error) {
	if depth > p.maxDepth {
		return models.TypeRef{}, errors.NewDepthError(
			fmt.Sprintf("nesting exceeds %d levels at %s", p.maxDepth, formatPath(path)),
			errors.ErrDepthExceeded,
		)
	}
	if len(arr.Items) == 0 {
		return models.ListOf(models.Scalar(AnyType)), nil
	}

	first := arr.Items[0]
	firstPath := extendPath(path, "0")
	switch first.Kind {
	case models.Object:
		name, err := p.analyzeObject(first, context+ItemSuffix, firstPath, depth+1)
		if err != nil {
			return models.TypeRef{}, err
		}
		return models.ListOf(models.ClassRef(name)), nil
	case models.Array:
		inner, err := p.analyzeArray(first, context, firstPath, depth+1)
		if err != nil {
			return models.TypeRef{}, err
		}
		return models.ListOf(inner), nil
	default:
		return models.ListOf(p.types.Map(first)), nil
	}
}

// analyzeObject registers a class for obj under className and returns the
// name it is known by. An object whose exact value was already seen in this
// pass resolves to the class created for it the first time.
func (p *pass) analyzeObject(obj models.JSONValue, className string, path []string, depth int) (string, error) {
	if depth > p.maxDepth {
		return "", errors.NewDepthError(
			fmt.Sprintf("nesting exceeds %d levels at %s", p.maxDepth, formatPath(path)),
			errors.ErrDepthExceeded,
		)
	}

	fingerprint := obj.Fingerprint()
	if existing, ok := p.seen[fingerprint]; ok {
		return existing, nil
	}
	p.seen[fingerprint] = className

	def := models.ClassDef{
		Name:   className,
		Fields: make([]models.FieldDef, 0, obj.Len()),
	}
	for pair := obj.Members.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		fieldType, err := p.analyzeNode(pair.Value, p.names.ClassName(key), extendPath(path, key), depth+1)
		if err != nil {
			return "", err
		}
		def.Fields = append(def.Fields, models.NewFieldDef(p.names.FieldName(key), fieldType))
	}

	if _, exists := p.registry.Get(className); exists {
		slog.Debug("class name collision, keeping last definition", "class", className, "path", formatPath(path))
	}
	p.registry.Put(def)
	return className, nil
}

func extendPath(path []string, segment string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, segment)
}

// formatPath renders a path as $.key[0].key for messages.
func formatPath(path []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, segment := range path {
		if _, err := strconv.Atoi(segment); err == nil {
			b.WriteString("[" + segment + "]")
			continue
		}
		b.WriteString("." + segment)
	}
	return b.String()
}
