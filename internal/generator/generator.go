package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/models"
)

// Style selects how field defaults are written.
type Style int

const (
	// Verbose wraps every field in an explicit Field(...) construction.
	Verbose Style = iota
	// Terse writes plain literal defaults and bare required fields.
	Terse
)

func (s Style) String() string {
	if s == Terse {
		return "terse"
	}
	return "verbose"
}

// ParseStyle parses "verbose" or "terse".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "field":
		return Verbose, nil
	case "terse", "simple":
		return Terse, nil
	default:
		return Verbose, fmt.Errorf("%w: %q", errors.ErrInvalidStyle, s)
	}
}

const (
	verboseHeader = "from pydantic import BaseModel, Field\nfrom typing import Optional, List, Dict, Any\n\n"
	terseHeader   = "from pydantic import BaseModel\nfrom typing import Optional, List, Dict, Any\n\n"
	indent        = "    "
)

// Generator renders class registries as Pydantic source text
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the imports header, every class except Root in registry
// order, then Root.
func (g *Generator) Generate(registry *models.ClassRegistry, style Style) string {
	var buf strings.Builder

	if style == Terse {
		buf.WriteString(terseHeader)
	} else {
		buf.WriteString(verboseHeader)
	}

	var root *models.ClassDef
	blocks := make([]string, 0, registry.Len())
	for _, def := range registry.Classes() {
		if def.IsRoot {
			d := def
			root = &d
			continue
		}
		blocks = append(blocks, renderClass(def, style))
	}

	buf.WriteString(strings.Join(blocks, "\n"))
	buf.WriteString("\n")
	if root != nil {
		buf.WriteString(renderClass(*root, style))
	}

	return buf.String()
}

func renderClass(def models.ClassDef, style Style) string {
	var b strings.Builder
	fmt.Fprintf(&b, "class %s(BaseModel):\n", def.Name)
	if len(def.Fields) == 0 {
		b.WriteString(indent + "pass\n")
		return b.String()
	}
	for _, field := range def.Fields {
		b.WriteString(indent)
		b.WriteString(renderField(field, style))
		b.WriteString("\n")
	}
	return b.String()
}

func renderField(field models.FieldDef, style Style) string {
	decl := field.Name + ": " + TypeString(field.Type)

	switch {
	case field.Optional || field.Default == models.DefaultNone:
		if style == Verbose {
			return decl + " = Field(default=None)"
		}
		return decl + " = None"
	case field.Default == models.DefaultEmptyList:
		if style == Verbose {
			return decl + " = Field(default_factory=list)"
		}
		return decl + " = []"
	default:
		if style == Verbose {
			return decl + " = Field()"
		}
		return decl
	}
}

// TypeString renders a type reference in Python typing syntax.
func TypeString(t models.TypeRef) string {
	switch t.Kind {
	case models.ListType:
		if t.Elem == nil {
			return "List[Any]"
		}
		return "List[" + TypeString(*t.Elem) + "]"
	case models.OptionalType:
		if t.Elem == nil {
			return "Optional[Any]"
		}
		return "Optional[" + TypeString(*t.Elem) + "]"
	default:
		return t.Name
	}
}
