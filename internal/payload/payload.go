// Package payload unwraps the response envelopes returned by the catalog
// API into a flat list of raw product records.
package payload

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Shape identifies which envelope a response used.
type Shape int

const (
	ShapeNone     Shape = iota // nothing usable; Records is empty
	ShapeArray                 // bare JSON array
	ShapeProducts              // {"products": [...]}
	ShapeData                  // {"data": [...]}
	ShapeItems                 // {"items": [...]}
	ShapeBody                  // {"body": "<json>"} API-Gateway proxy envelope
	ShapeSingle                // a single product object
)

var shapeNames = map[Shape]string{
	ShapeNone:     "none",
	ShapeArray:    "array",
	ShapeProducts: "products",
	ShapeData:     "data",
	ShapeItems:    "items",
	ShapeBody:     "body",
	ShapeSingle:   "single",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return "invalid"
}

// Record is one undecoded product as delivered by the API.
type Record = map[string]any

// Result is the outcome of parsing an envelope. Inner holds the shape of
// the payload nested inside a ShapeBody envelope.
type Result struct {
	Shape   Shape
	Inner   Shape
	Records []Record
}

// maxDepth bounds how many envelopes may be nested inside each other.
const maxDepth = 4

// listKeys are the wrapper keys tried, in priority order, on an object.
var listKeys = []struct {
	key   string
	shape Shape
}{
	{"products", ShapeProducts},
	{"data", ShapeData},
	{"items", ShapeItems},
}

// identityKeys mark an object as a product record rather than an envelope.
var identityKeys = []string{"product_id", "id", "model", "name", "title"}

// Parse decodes raw JSON and unwraps it. Invalid JSON yields ShapeNone.
func Parse(raw []byte) Result {
	v, ok := decode(raw)
	if !ok {
		return Result{Shape: ShapeNone}
	}
	return ParseValue(v)
}

// ParseValue unwraps an already decoded JSON value.
func ParseValue(v any) Result {
	return parse(v, 0)
}

func parse(v any, depth int) Result {
	if depth > maxDepth {
		return Result{Shape: ShapeNone}
	}

	switch t := v.(type) {
	case []any:
		return Result{Shape: ShapeArray, Records: records(t)}
	case map[string]any:
		return parseObject(t, depth)
	default:
		return Result{Shape: ShapeNone}
	}
}

func parseObject(obj map[string]any, depth int) Result {
	if body, ok := obj["body"]; ok {
		inner := parseBody(body, depth)
		if inner.Shape != ShapeNone {
			return Result{Shape: ShapeBody, Inner: inner.Shape, Records: inner.Records}
		}
	}

	for _, lk := range listKeys {
		val, ok := obj[lk.key]
		if !ok || val == nil {
			continue
		}
		switch t := val.(type) {
		case []any:
			return Result{Shape: lk.shape, Records: records(t)}
		case map[string]any:
			// {"data": {"products": [...]}} and similar nestings.
			if inner := parse(t, depth+1); inner.Shape != ShapeNone {
				return Result{Shape: lk.shape, Inner: inner.Shape, Records: inner.Records}
			}
		}
	}

	if isRecord(obj) {
		return Result{Shape: ShapeSingle, Records: []Record{obj}}
	}
	return Result{Shape: ShapeNone}
}

// parseBody handles the proxy envelope, whose body is usually a JSON
// string but is sometimes delivered already decoded.
func parseBody(body any, depth int) Result {
	switch t := body.(type) {
	case string:
		v, ok := decode([]byte(t))
		if !ok {
			return Result{Shape: ShapeNone}
		}
		return parse(v, depth+1)
	case []any, map[string]any:
		return parse(t, depth+1)
	default:
		return Result{Shape: ShapeNone}
	}
}

func decode(raw []byte) (any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// records keeps the object elements of list and drops everything else.
func records(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func isRecord(obj map[string]any) bool {
	for _, k := range identityKeys {
		if s, ok := obj[k]; ok && s != nil {
			if str, isStr := s.(string); isStr && strings.TrimSpace(str) == "" {
				continue
			}
			return true
		}
	}
	return false
}
