package llm

import (
	"fmt"
	"strings"
)

// Field is one key of the JSON object the model must answer with.
type Field struct {
	Name     string
	Type     string // shown verbatim; defaults to string
	Hint     string
	Optional bool
}

// Contract pairs task instructions with the JSON shape expected back.
type Contract struct {
	Instructions string
	Fields       []Field
}

// Prompt renders the contract around input, which is fenced in triple quotes.
func (c Contract) Prompt(input string) string {
	var b strings.Builder
	b.WriteString(c.Instructions)
	b.WriteString("\n\nRespond with a single JSON object of this shape:\n{\n")

	for i, f := range c.Fields {
		typ := f.Type
		if typ == "" {
			typ = "string"
		}
		fmt.Fprintf(&b, "  %q: %s", f.Name, typ)
		if !f.Optional {
			b.WriteString(" (required)")
		}
		if f.Hint != "" {
			b.WriteString(" // " + f.Hint)
		}
		if i < len(c.Fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("}\n\nRules:\n")
	b.WriteString("- Judge only what the input says. Never assume experience it does not show.\n")
	b.WriteString("- Output the JSON object alone, without markdown fences or commentary.\n\n")
	fmt.Fprintf(&b, "Input:\n\"\"\"\n%s\n\"\"\"\n", input)
	return b.String()
}

// ResumeVerdict is the contract for scoring a resume; instructions carry the
// job-specific rubric.
func ResumeVerdict(instructions string) Contract {
	return Contract{
		Instructions: instructions,
		Fields: []Field{
			{Name: "is_resume", Type: "true|false", Hint: "false when the document is not a resume or CV"},
			{Name: "score", Type: "0-100", Hint: "integer match score"},
			{Name: "reasoning", Type: `"string"`, Hint: "short justification for the score"},
			{Name: "missing_keywords", Type: `["string"]`, Hint: "required skills or qualifications absent from the resume"},
		},
	}
}
