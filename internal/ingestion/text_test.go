package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t \n ", ""},
		{"collapses spaces", "Senior    Go   engineer", "Senior Go engineer"},
		{"windows line endings", "Jane Doe\r\nBerlin\rRemote", "Jane Doe\nBerlin\nRemote"},
		{"blank line runs", "Summary\n\n\n\n\nExperience", "Summary\n\nExperience"},
		{"leading blank lines dropped", "\n\n\nJane Doe", "Jane Doe"},
		{"headings flush left", "   ## Experience", "## Experience"},
		{"dash and star bullets kept", "- Go\n* SQL", "- Go\n* SQL"},
		{"bullet glyphs", "• Built APIs\n▪ Led team\n· On call", "- Built APIs\n- Led team\n- On call"},
		{"nested bullet indentation", "- Platform\n    • Kubernetes", "- Platform\n    - Kubernetes"},
		{"tab indentation", "\t- Terraform", "    - Terraform"},
		{"ligatures", "Pro\ufb01cient in work\ufb02ow o\ufb03ce tools", "Proficient in workflow office tools"},
		{"invisible characters", "\ufeffJane\u200b Doe,\u00a0engi\u00adneer II", "Jane Doe, engineer II"},
		{"unicode kept", "José Müller, 東京", "José Müller, 東京"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	input := "  Jane   Doe \n\n\n• Go\n\t• SQL\n"
	once := CleanText(input)
	assert.Equal(t, once, CleanText(once))
}

func TestCleanText_ResumeFixture(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "complex_formatting.txt"))
	require.NoError(t, err)

	got := CleanText(string(content))

	assert.Equal(t, `# Jane Doe
   Backend engineer based in Lisbon

## Experience
- Shipped a Go billing service used by 2M customers
- Migrated batch jobs to Kubernetes
    - Cut nightly runtime by 40%

## Skills
* Go
* PostgreSQL
* AWS (S3, SES)`, got)
}
