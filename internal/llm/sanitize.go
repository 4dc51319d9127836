package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// snake_case spellings models tend to produce, mapped to schema field names.
// Order is precedence: when two synonyms of one field are both present the
// earlier one wins and the later one is left in place.
var keySynonyms = []struct{ from, to string }{
	{"document_type", "documentType"},
	{"phone_numbers", "phoneNumbers"},
	{"phones", "phoneNumbers"},
	{"email_addresses", "emails"},
	{"key_information", "keyInformation"},
	{"key_info", "keyInformation"},
	{"organisations", "organizations"},
	{"addresses", "locations"},
}

// CleanJSONResponse removes markdown code fences around a JSON payload.
func CleanJSONResponse(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "```json")
	s = strings.TrimPrefix(strings.TrimSpace(s), "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeKeys renames known synonyms at the top level of a JSON object.
// An existing value under the target name is never overwritten; the synonym
// is then left in place.
// Non-object payloads are returned unchanged for the validator to reject.
func NormalizeKeys(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw, nil, nil
	}

	renamed := make([]string, 0, 4)
	for _, syn := range keySynonyms {
		from, to := syn.from, syn.to
		v, ok := m[from]
		if !ok {
			continue
		}
		if _, exists := m[to]; exists {
			continue
		}
		m[to] = v
		delete(m, from)
		renamed = append(renamed, from+"->"+to)
	}
	if len(renamed) == 0 {
		return raw, nil, nil
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, renamed, fmt.Errorf("sanitize: encode: %w", err)
	}
	logger.Debug("llm.extract.normalize_keys", "renamed", renamed)
	return out, renamed, nil
}
