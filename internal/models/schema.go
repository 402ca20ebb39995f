package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TypeKind categorizes a field's declared type.
type TypeKind int

const (
	ScalarType TypeKind = iota
	ListType
	ClassType
	OptionalType
)

// TypeRef is a declared field type: a scalar token, a list, a class
// reference or an optional wrapper.
type TypeRef struct {
	Kind TypeKind
	Name string   // scalar token or class name
	Elem *TypeRef // element type for ListType and OptionalType
}

// Scalar returns a reference to a scalar token such as "str" or "Any".
func Scalar(token string) TypeRef {
	return TypeRef{Kind: ScalarType, Name: token}
}

// ListOf returns a list of elem.
func ListOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: ListType, Elem: &elem}
}

// ClassRef returns a reference to a generated class.
func ClassRef(name string) TypeRef {
	return TypeRef{Kind: ClassType, Name: name}
}

// OptionalOf wraps elem as optional.
func OptionalOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: OptionalType, Elem: &elem}
}

// DefaultPolicy decides which default a field is declared with.
type DefaultPolicy int

const (
	DefaultRequired DefaultPolicy = iota
	DefaultNone
	DefaultEmptyList
)

// FieldDef describes one field of a generated class.
type FieldDef struct {
	Name     string
	Type     TypeRef
	Optional bool
	Default  DefaultPolicy
}

// NewFieldDef derives optionality and the default policy from the type.
func NewFieldDef(name string, t TypeRef) FieldDef {
	field := FieldDef{Name: name, Type: t}
	switch t.Kind {
	case OptionalType:
		field.Optional = true
		field.Default = DefaultNone
	case ListType:
		field.Default = DefaultEmptyList
	default:
		field.Default = DefaultRequired
	}
	return field
}

// ClassDef is one generated model class.
type ClassDef struct {
	Name   string
	Fields []FieldDef
	IsRoot bool
}

// ClassRegistry keeps class definitions in first-insertion order.
// Putting a name again replaces the definition but not its position.
type ClassRegistry struct {
	classes *orderedmap.OrderedMap[string, ClassDef]
}

// NewClassRegistry returns an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: orderedmap.New[string, ClassDef]()}
}

// Put inserts or overwrites a class definition.
func (r *ClassRegistry) Put(def ClassDef) {
	r.classes.Set(def.Name, def)
}

// Get returns the class registered under name.
func (r *ClassRegistry) Get(name string) (ClassDef, bool) {
	return r.classes.Get(name)
}

// Len returns the number of registered classes.
func (r *ClassRegistry) Len() int {
	return r.classes.Len()
}

// Classes returns all definitions in registry order.
func (r *ClassRegistry) Classes() []ClassDef {
	defs := make([]ClassDef, 0, r.classes.Len())
	for pair := r.classes.Oldest(); pair != nil; pair = pair.Next() {
		defs = append(defs, pair.Value)
	}
	return defs
}

// Names returns class names in registry order.
func (r *ClassRegistry) Names() []string {
	names := make([]string, 0, r.classes.Len())
	for pair := r.classes.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
