package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// InferDocumentType returns the filename's last path segment without its final
// extension: "/a/b/invoice_2023.pdf" -> "invoice_2023", "report.final.pdf" -> "report.final".
// Both '/' and '\' separate segments. An empty stem yields "unknown".
func InferDocumentType(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	if strings.TrimSpace(base) == "" {
		return constants.UnknownDocumentType
	}
	return base
}

// BuildPrompt composes the extraction instruction. The document text is embedded
// verbatim between <content> tags; nothing is truncated.
func BuildPrompt(req ExtractRequest) string {
	hint := req.InferredType
	if hint == "" {
		hint = InferDocumentType(req.Filename)
	}

	var b strings.Builder
	b.Grow(len(req.Text) + 1024)

	b.WriteString("You are an expert data extractor. Extract all relevant information from the document below ")
	b.WriteString("and organize it into a structured JSON format.\n\n")

	b.WriteString("The document appears to be: ")
	b.WriteString(hint)
	b.WriteString("\nTreat this as a hint only, not a constraint; set documentType to what the content actually is.\n\n")

	b.WriteString("Focus on:\n")
	b.WriteString("1. Key information such as names, addresses, dates, and monetary amounts\n")
	b.WriteString("2. Important entities like people, organizations, and locations\n")
	b.WriteString("3. Document metadata and its overall purpose\n")
	b.WriteString("4. Structured data such as tables, line items, and reference numbers\n\n")

	b.WriteString("Document content:\n<content>\n")
	b.WriteString(req.Text)
	b.WriteString("\n</content>\n\n")

	b.WriteString("Return your response as a single JSON object that matches the provided schema. ")
	b.WriteString("Always include documentType and summary. Use empty lists for categories with nothing found, ")
	b.WriteString("and put any other key facts into keyInformation as name/value pairs.")
	return b.String()
}

// CheckPromptSize enforces an optional upper bound on prompt size in bytes.
// max <= 0 disables the check.
func CheckPromptSize(prompt string, max int) error {
	if max > 0 && len(prompt) > max {
		return common.ServiceError(fmt.Sprintf("prompt is %d bytes, limit is %d", len(prompt), max), common.ErrPromptLimit)
	}
	return nil
}
