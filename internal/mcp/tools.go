package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/pytyper/internal/converter"
	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/generator"
)

// ConvertInput is the input for json_to_pydantic.
type ConvertInput struct {
	JSON  string `json:"json" jsonschema:"the JSON document to convert"`
	Style string `json:"style,omitempty" jsonschema:"verbose or terse; defaults to verbose"`
}

// ConvertOutput is the output for json_to_pydantic.
type ConvertOutput struct {
	Code  string `json:"code"`
	Style string `json:"style"`
}

// ToolConvert converts the submitted document.
func ToolConvert(conv *converter.Converter) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ConvertInput) (*sdkmcp.CallToolResult, ConvertOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ConvertInput) (*sdkmcp.CallToolResult, ConvertOutput, error) {
		styleName := input.Style
		if styleName == "" {
			styleName = conv.Config().Style
		}
		style, err := generator.ParseStyle(styleName)
		if err != nil {
			return nil, ConvertOutput{}, err
		}

		code, err := conv.Convert(input.JSON, style)
		if err != nil {
			return nil, ConvertOutput{}, fmt.Errorf("%s", errors.UserFriendlyError(err))
		}

		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: code}},
		}, ConvertOutput{Code: code, Style: style.String()}, nil
	}
}

// AddTool registers a tool after checking that the zero value of its output
// type satisfies the schema the SDK infers for it.
//
// Panics if the zero value of Out fails schema validation.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when the JSON encoding of the zero value of T
// does not validate against the schema inferred from T.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return // the SDK reports this in AddTool
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}

	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf("AddTool %q: zero value of output type %s fails schema validation: %v\n  JSON: %s",
			toolName, rt, err, data))
	}
}
