package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Object is a decoded JSON object. Values are the generic JSON tree:
// string, json.Number, bool, nil, []any and map[string]any.
type Object = map[string]any

var (
	ErrNotObject     = errors.New("payload must be a JSON object")
	ErrTrailingData  = errors.New("unexpected data after JSON value")
	ErrEmptyDocument = errors.New("empty body")
)

// Decode parses raw as a single JSON object. Numbers are kept as
// json.Number so they render exactly as the sender wrote them.
func Decode(raw []byte) (Object, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// Text renders a JSON tree value as display text. Scalars render as their
// literal form, composite values as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// absent reports whether v should be treated as if the key were missing.
func absent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
