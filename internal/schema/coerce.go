package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// Coerce normalizes a decoded JSON value against the schema.
//   - null counts as absent
//   - a missing or mistyped required field is a schema mismatch
//   - a missing optional field gets its empty default
//   - a mistyped optional field is reset to its default and reported in dropped
//   - list items of the wrong shape are dropped
//   - unknown top-level keys move into the first map field, if the schema has one
//
// The input is not modified.
func (s *Schema) Coerce(v any) (map[string]any, []string, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil, common.SchemaMismatchError(fmt.Sprintf("expected a JSON object, got %s", kindOf(v)), nil)
	}

	out := make(map[string]any, len(s.Fields))
	dropped := make([]string, 0, 4)

	for _, f := range s.Fields {
		raw := obj[f.Name]
		if raw == nil {
			if f.Required {
				return nil, nil, common.SchemaMismatchError(fmt.Sprintf("required field %q is missing", f.Name), nil)
			}
			out[f.Name] = f.zero()
			continue
		}
		val, notes, err := f.coerce(raw)
		if err != nil {
			if f.Required {
				return nil, nil, common.SchemaMismatchError(fmt.Sprintf("field %q", f.Name), err)
			}
			out[f.Name] = f.zero()
			dropped = append(dropped, f.Name+"(type)")
			continue
		}
		out[f.Name] = val
		dropped = append(dropped, notes...)
	}

	unknown := make([]string, 0)
	for k := range obj {
		if _, known := s.Field(k); !known {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		overflow, hasOverflow := s.overflowField()
		for _, k := range unknown {
			if !hasOverflow || obj[k] == nil {
				dropped = append(dropped, k+"(unknown)")
				continue
			}
			m := out[overflow].(map[string]any)
			if _, exists := m[k]; exists {
				dropped = append(dropped, k+"(duplicate)")
				continue
			}
			m[k] = obj[k]
		}
	}

	return out, dropped, nil
}

func (s *Schema) overflowField() (string, bool) {
	for _, f := range s.Fields {
		if f.Kind == KindMap {
			return f.Name, true
		}
	}
	return "", false
}

// zero is the empty default for an absent optional field.
func (f Field) zero() any {
	switch f.Kind {
	case KindString:
		return ""
	case KindNumber:
		return float64(0)
	case KindStringList, KindRecordList:
		return []any{}
	case KindMap:
		return map[string]any{}
	default:
		return nil
	}
}

func (f Field) coerce(raw any) (any, []string, error) {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string, got %s", kindOf(raw))
		}
		return s, nil, nil

	case KindNumber:
		n, err := toNumber(raw)
		if err != nil {
			return nil, nil, err
		}
		return n, nil, nil

	case KindStringList:
		// a lone string is accepted as a one-item list
		if s, ok := raw.(string); ok {
			return []any{s}, []string{f.Name + "(wrapped)"}, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, nil, fmt.Errorf("expected array, got %s", kindOf(raw))
		}
		out := make([]any, 0, len(items))
		var notes []string
		for i, it := range items {
			s, ok := it.(string)
			if !ok {
				notes = append(notes, fmt.Sprintf("%s[%d](type)", f.Name, i))
				continue
			}
			out = append(out, s)
		}
		return out, notes, nil

	case KindRecordList:
		items, ok := raw.([]any)
		if !ok {
			return nil, nil, fmt.Errorf("expected array, got %s", kindOf(raw))
		}
		out := make([]any, 0, len(items))
		var notes []string
		for i, it := range items {
			rec, err := f.coerceRecord(it)
			if err != nil {
				notes = append(notes, fmt.Sprintf("%s[%d](%v)", f.Name, i, err))
				continue
			}
			out = append(out, rec)
		}
		return out, notes, nil

	case KindMap:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("expected object, got %s", kindOf(raw))
		}
		cp := make(map[string]any, len(m))
		for k, v := range m {
			cp[k] = v
		}
		return cp, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported kind %q", f.Kind)
}

// coerceRecord fills missing required string sub-fields with "", omits
// missing optional ones, and rejects the record when a required number is
// absent or unparseable.
func (f Field) coerceRecord(raw any) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not an object")
	}
	out := make(map[string]any, len(f.Items))
	for _, sub := range f.Items {
		v := m[sub.Name]
		if v == nil {
			if !sub.Required {
				continue
			}
			if sub.Kind == KindNumber {
				return nil, fmt.Errorf("missing %s", sub.Name)
			}
			out[sub.Name] = sub.zero()
			continue
		}
		switch sub.Kind {
		case KindString:
			switch t := v.(type) {
			case string:
				out[sub.Name] = t
			case float64:
				out[sub.Name] = strconv.FormatFloat(t, 'f', -1, 64)
			case bool:
				out[sub.Name] = strconv.FormatBool(t)
			default:
				return nil, fmt.Errorf("bad %s", sub.Name)
			}
		case KindNumber:
			n, err := toNumber(v)
			if err != nil {
				return nil, fmt.Errorf("bad %s", sub.Name)
			}
			out[sub.Name] = n
		default:
			val, _, err := sub.coerce(v)
			if err != nil {
				return nil, fmt.Errorf("bad %s", sub.Name)
			}
			out[sub.Name] = val
		}
	}
	return out, nil
}

var numberCleaner = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")

func toNumber(v any) (float64, error) {
	n, err := parseNumber(v)
	if err != nil {
		return 0, err
	}
	// NaN and Inf parse from strings but cannot be encoded as JSON
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("non-finite number %v", v)
	}
	return n, nil
}

func parseNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		s := numberCleaner.Replace(strings.TrimSpace(t))
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected number, got %s", kindOf(v))
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
