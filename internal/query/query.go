// Package query selects the part of a document to convert using jq path
// expressions.
package query

import (
	"fmt"
	"strconv"

	"github.com/itchyny/gojq"

	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/models"
)

// Selector is a compiled jq path expression such as .data.items or .[0].user.
type Selector struct {
	expression string
	code       *gojq.Code
}

// Compile parses a jq path expression. Only expressions that denote paths
// are accepted, so the selected value keeps its member order.
func Compile(expression string) (*Selector, error) {
	query, err := gojq.Parse("path(" + expression + ")")
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("invalid jq expression '%s'", expression), err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("failed to compile jq expression '%s'", expression), err)
	}
	return &Selector{expression: expression, code: code}, nil
}

// String returns the source expression.
func (s *Selector) String() string {
	return s.expression
}

// Select returns the first value the expression points at.
func (s *Selector) Select(root models.JSONValue) (models.JSONValue, error) {
	iter := s.code.Run(root.ToAny())
	v, ok := iter.Next()
	if !ok {
		return models.JSONValue{}, errors.NewQueryError(
			fmt.Sprintf("'%s' selected nothing", s.expression),
			errors.ErrNoSelection,
		)
	}
	if err, isErr := v.(error); isErr {
		return models.JSONValue{}, errors.NewQueryError(fmt.Sprintf("'%s' failed", s.expression), err)
	}

	path, ok := v.([]any)
	if !ok {
		return models.JSONValue{}, errors.NewQueryError(fmt.Sprintf("'%s' did not produce a path", s.expression), nil)
	}
	return walk(root, path, s.expression)
}

// walk follows a jq path through the ordered tree.
func walk(node models.JSONValue, path []any, expression string) (models.JSONValue, error) {
	current := node
	for _, segment := range path {
		switch seg := segment.(type) {
		case string:
			next, ok := current.Get(seg)
			if !ok {
				return models.JSONValue{}, errors.NewQueryError(
					fmt.Sprintf("'%s': key %s not found", expression, strconv.Quote(seg)),
					errors.ErrNoSelection,
				)
			}
			current = next
		case int:
			next, err := index(current, seg, expression)
			if err != nil {
				return models.JSONValue{}, err
			}
			current = next
		case float64:
			next, err := index(current, int(seg), expression)
			if err != nil {
				return models.JSONValue{}, err
			}
			current = next
		default:
			return models.JSONValue{}, errors.NewQueryError(
				fmt.Sprintf("'%s': unsupported path segment %v", expression, segment),
				nil,
			)
		}
	}
	return current, nil
}

func index(node models.JSONValue, i int, expression string) (models.JSONValue, error) {
	if node.Kind != models.Array {
		return models.JSONValue{}, errors.NewQueryError(
			fmt.Sprintf("'%s': cannot index %s with %d", expression, node.Kind, i),
			errors.ErrNoSelection,
		)
	}
	if i < 0 {
		i += len(node.Items)
	}
	if i < 0 || i >= len(node.Items) {
		return models.JSONValue{}, errors.NewQueryError(
			fmt.Sprintf("'%s': index %d out of range", expression, i),
			errors.ErrNoSelection,
		)
	}
	return node.Items[i], nil
}
