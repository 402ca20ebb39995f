package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/kaptinlin/jsonrepair"

	"github.com/mcncl/pytyper/internal/config"
	"github.com/mcncl/pytyper/internal/errors" // Custom errors package
	"github.com/mcncl/pytyper/internal/models"
)

// Options controls how raw text is turned into a document.
type Options struct {
	// Repair attempts to fix malformed input before giving up.
	Repair bool
	// MaxDepth is the deepest nesting accepted; zero means config.DefaultMaxDepth.
	MaxDepth int
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	return ParseWithOptions(reader, Options{})
}

// ParseWithOptions reads all of reader and parses it.
func ParseWithOptions(reader io.Reader, opts Options) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data, opts)
}

// ParseBytes validates data as exactly one JSON document and builds an
// order-preserving value tree from it.
func ParseBytes(data []byte, opts Options) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	if err := validate(data); err != nil {
		if !opts.Repair || errors.IsDepthExceeded(err) {
			return models.IntermediateRepresentation{}, err
		}
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			slog.Debug("json repair failed", "error", repairErr)
			return models.IntermediateRepresentation{}, err
		}
		if err := validate([]byte(repaired)); err != nil {
			return models.IntermediateRepresentation{}, err
		}
		slog.Debug("repaired malformed JSON input", "original_bytes", len(data), "repaired_bytes", len(repaired))
		data = []byte(repaired)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}

	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}
	root, err := buildValue(raw, dataType, "$", 0, maxDepth)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	return models.IntermediateRepresentation{Root: root}, nil
}

// validate runs the standard decoder over data so malformed input is
// reported with its offset, and rejects trailing values.
func validate(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			if strings.Contains(syntaxError.Error(), "exceeded max depth") {
				return errors.NewDepthError(
					fmt.Sprintf("nesting exceeds the decoder limit of %d levels at offset %d", config.MaxDepthLimit, syntaxError.Offset),
					errors.ErrDepthExceeded,
				)
			}
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
				errors.ErrInvalidJSON,
			)
		}
		return errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %s", err.Error()), errors.ErrInvalidJSON)
	}

	// Whitespace after the document is fine; anything else is not.
	rest := bytes.TrimSpace(data[decoder.InputOffset():])
	if len(rest) == 0 {
		return nil
	}
	var trailingValue json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(rest)).Decode(&trailingValue); err != nil {
		return errors.NewParsingError(
			fmt.Sprintf("invalid trailing data after first JSON value: %s", err.Error()),
			errors.ErrInvalidJSON,
		)
	}
	return errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
}

// buildValue converts one raw value into the tagged union. Objects keep
// member order; a repeated key keeps its first position and its last value.
func buildValue(raw []byte, dataType jsonparser.ValueType, path string, depth, maxDepth int) (models.JSONValue, error) {
	if depth > maxDepth {
		return models.JSONValue{}, errors.NewDepthError(
			fmt.Sprintf("nesting exceeds %d levels at %s", maxDepth, path),
			errors.ErrDepthExceeded,
		)
	}

	switch dataType {
	case jsonparser.Null:
		return models.NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return models.JSONValue{}, errors.NewParsingError(fmt.Sprintf("invalid boolean at %s", path), err)
		}
		return models.BoolValue(b), nil
	case jsonparser.Number:
		return models.NumberValue(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return models.JSONValue{}, errors.NewParsingError(fmt.Sprintf("invalid string at %s", path), err)
		}
		return models.StringValue(s), nil
	case jsonparser.Array:
		items := make([]models.JSONValue, 0)
		var itemErr error
		index := 0
		_, err := jsonparser.ArrayEach(raw, func(value []byte, valueType jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = errors.NewParsingError(fmt.Sprintf("invalid array element at %s[%d]", path, index), err)
				return
			}
			item, err := buildValue(value, valueType, fmt.Sprintf("%s[%d]", path, index), depth+1, maxDepth)
			if err != nil {
				itemErr = err
				return
			}
			items = append(items, item)
			index++
		})
		if itemErr != nil {
			return models.JSONValue{}, itemErr
		}
		if err != nil {
			return models.JSONValue{}, errors.NewParsingError(fmt.Sprintf("invalid array at %s", path), err)
		}
		return models.ArrayValue(items...), nil
	case jsonparser.Object:
		obj := models.NewObject()
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, valueType jsonparser.ValueType, _ int) error {
			// ObjectEach hands over keys already unescaped.
			k := string(key)
			member, err := buildValue(value, valueType, path+"."+k, depth+1, maxDepth)
			if err != nil {
				return err
			}
			obj.Set(k, member)
			return nil
		})
		if err != nil {
			var appErr *errors.AppError
			if stderrors.As(err, &appErr) {
				return models.JSONValue{}, err
			}
			return models.JSONValue{}, errors.NewParsingError(fmt.Sprintf("invalid object at %s", path), err)
		}
		return obj, nil
	default:
		return models.JSONValue{}, errors.NewParsingError(fmt.Sprintf("unexpected JSON value at %s", path), errors.ErrInvalidJSON)
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseBytes([]byte(jsonString), Options{})
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts Options) (models.IntermediateRepresentation, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return ParseBytes(data, opts)
}

// ReadFile reads an input file, reporting missing and empty files as input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
