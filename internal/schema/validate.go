package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// Validate checks doc (a decoded JSON value) against the rendered JSON Schema.
// Any violation is a schema mismatch.
func (s *Schema) Validate(doc any) error {
	compiled, err := s.compile()
	if err != nil {
		return err
	}
	if err := compiled.Validate(doc); err != nil {
		return common.SchemaMismatchError("json does not match schema", err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.compileOnce.Do(func() {
		b, err := json.Marshal(s.JSONSchema())
		if err != nil {
			s.compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		url := s.Name + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			s.compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		s.compiled, s.compileErr = compiler.Compile(url)
		if s.compileErr != nil {
			s.compileErr = fmt.Errorf("compile schema: %w", s.compileErr)
		}
	})
	return s.compiled, s.compileErr
}

// Parse decodes raw JSON, coerces it and validates the coerced value.
// It returns the typed result, the canonical JSON of the coerced value,
// and the list of dropped or defaulted entries.
func (s *Schema) Parse(raw []byte) (Result, []byte, []string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Result{}, nil, nil, common.SchemaMismatchError("payload is not valid JSON", err)
	}
	doc, dropped, err := s.Coerce(v)
	if err != nil {
		return Result{}, nil, nil, err
	}
	if err := s.Validate(doc); err != nil {
		return Result{}, nil, dropped, err
	}
	canon, err := json.Marshal(doc)
	if err != nil {
		return Result{}, nil, dropped, common.SchemaMismatchError("re-encode coerced payload", err)
	}
	var out Result
	if err := json.Unmarshal(canon, &out); err != nil {
		return Result{}, nil, dropped, common.SchemaMismatchError("decode coerced payload", err)
	}
	return out, canon, dropped, nil
}
