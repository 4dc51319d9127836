package constants

// DocStatus is the per-document pipeline state.
type DocStatus string

// Stable values, also used in reports and logs.
const (
	DocStatusPending       DocStatus = "PENDING"        // discovered, not yet read
	DocStatusTextExtracted DocStatus = "TEXT_EXTRACTED" // stage 1 completed
	DocStatusPromptBuilt   DocStatus = "PROMPT_BUILT"   // instruction assembled
	DocStatusSubmitted     DocStatus = "SUBMITTED"      // request sent to the model service
	DocStatusValidated     DocStatus = "VALIDATED"      // result validated and persisted
	DocStatusFailed        DocStatus = "FAILED"         // terminal failure for this document only
)

// Terminal reports whether no further transitions are possible from s.
func (s DocStatus) Terminal() bool {
	return s == DocStatusValidated || s == DocStatusFailed
}
