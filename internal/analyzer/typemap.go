package analyzer

import (
	"strings"

	"github.com/mcncl/pytyper/internal/models"
)

// Python type tokens emitted for JSON scalars.
const (
	AnyType   = "Any"
	StrType   = "str"
	FloatType = "float"
	IntType   = "int"
	BoolType  = "bool"
)

// TypeMapper maps JSON scalar kinds to Python type tokens.
type TypeMapper struct {
	// detectIntegers emits int for number literals without a fraction or exponent.
	detectIntegers bool
}

// NewTypeMapper creates a TypeMapper.
func NewTypeMapper(detectIntegers bool) *TypeMapper {
	return &TypeMapper{detectIntegers: detectIntegers}
}

// MapKind returns the token for a kind. Numbers are always float here.
func (m *TypeMapper) MapKind(kind models.Kind) models.TypeRef {
	switch kind {
	case models.Null:
		return models.OptionalOf(models.Scalar(AnyType))
	case models.Bool:
		return models.Scalar(BoolType)
	case models.Number:
		return models.Scalar(FloatType)
	case models.String:
		return models.Scalar(StrType)
	default:
		return models.Scalar(AnyType)
	}
}

// Map returns the token for a scalar value.
func (m *TypeMapper) Map(v models.JSONValue) models.TypeRef {
	if v.Kind == models.Number && m.detectIntegers && isIntegralLiteral(v.Text) {
		return models.Scalar(IntType)
	}
	return m.MapKind(v.Kind)
}

func isIntegralLiteral(literal string) bool {
	return literal != "" && !strings.ContainsAny(literal, ".eE")
}
