package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ParseWBS reads a work breakdown structure from a JSON file
func ParseWBS(filePath string) (WorkBreakdownStructure, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, &InputFormatError{Path: filePath, Reason: "cannot read file", Err: err}
	}
	defer file.Close()

	wbs, err := DecodeWBS(file)
	if err != nil {
		var inputErr *InputFormatError
		if errors.As(err, &inputErr) {
			inputErr.Path = filePath
		}
		return nil, err
	}

	return wbs, nil
}

// DecodeWBS decodes a JSON object mapping module names to arrays of issue titles.
// Keys and titles keep the order they have in the document.
func DecodeWBS(r io.Reader) (WorkBreakdownStructure, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, syntaxError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &InputFormatError{Reason: fmt.Sprintf("top-level value must be an object, got %s", describeToken(tok))}
	}

	wbs := WorkBreakdownStructure{}
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, syntaxError(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, &InputFormatError{Reason: fmt.Sprintf("unexpected token %v", tok)}
		}
		if seen[name] {
			return nil, &InputFormatError{Reason: fmt.Sprintf("duplicate module name %q", name)}
		}
		seen[name] = true

		issues, err := decodeIssueList(dec, name)
		if err != nil {
			return nil, err
		}

		wbs = append(wbs, WorkPackage{Name: name, Issues: issues})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, syntaxError(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &InputFormatError{Reason: "unexpected content after top-level object"}
	}

	return wbs, nil
}

func decodeIssueList(dec *json.Decoder, module string) ([]string, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxError(err)
	}

	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return nil, &InputFormatError{Reason: fmt.Sprintf("value of %q must be an array of strings", module)}
	}

	issues := make([]string, 0, len(values))
	for i, v := range values {
		var title string
		if err := json.Unmarshal(v, &title); err != nil || string(v) == "null" {
			return nil, &InputFormatError{Reason: fmt.Sprintf("item %d of %q must be a string, got %s", i, module, string(v))}
		}
		issues = append(issues, title)
	}

	return issues, nil
}

func syntaxError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &InputFormatError{Reason: "invalid JSON", Err: err}
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return string(v)
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
