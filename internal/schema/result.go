package schema

import "encoding/json"

// Result is the typed view of a document validated by Document().
type Result struct {
	DocumentType   string         `json:"documentType"`
	Summary        string         `json:"summary"`
	People         []string       `json:"people"`
	Organizations  []string       `json:"organizations"`
	Locations      []string       `json:"locations"`
	Dates          []DateEntry    `json:"dates"`
	Amounts        []Amount       `json:"amounts"`
	PhoneNumbers   []string       `json:"phoneNumbers"`
	Emails         []string       `json:"emails"`
	KeyInformation map[string]any `json:"keyInformation"`
}

type DateEntry struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Amount struct {
	Value       float64 `json:"value"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description"`
}

// Normalize replaces nil containers with empty ones so the serialized form
// always carries every field.
func (r Result) Normalize() Result {
	if r.People == nil {
		r.People = []string{}
	}
	if r.Organizations == nil {
		r.Organizations = []string{}
	}
	if r.Locations == nil {
		r.Locations = []string{}
	}
	if r.Dates == nil {
		r.Dates = []DateEntry{}
	}
	if r.Amounts == nil {
		r.Amounts = []Amount{}
	}
	if r.PhoneNumbers == nil {
		r.PhoneNumbers = []string{}
	}
	if r.Emails == nil {
		r.Emails = []string{}
	}
	if r.KeyInformation == nil {
		r.KeyInformation = map[string]any{}
	}
	return r
}

// Marshal serializes the result as stored in the extracted_data column.
func (r Result) Marshal() ([]byte, error) {
	return json.Marshal(r.Normalize())
}

// MarshalIndent is the pretty form printed to the operator.
func (r Result) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r.Normalize(), "", "  ")
}

// UnmarshalResult decodes a stored extracted_data value.
func UnmarshalResult(b []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(b, &r); err != nil {
		return Result{}, err
	}
	return r.Normalize(), nil
}
