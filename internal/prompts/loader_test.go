package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ScoringPrompts(t *testing.T) {
	prompt, err := Get("scoring.json", "score-resume")
	require.NoError(t, err)
	for _, placeholder := range []string{"{{.Title}}", "{{.Description}}", "{{.Requirements}}", "{{.Skills}}"} {
		assert.Contains(t, prompt, placeholder)
	}
	assert.Contains(t, prompt, "is_resume")
	assert.Contains(t, prompt, "missing_keywords")

	section, err := Get("scoring.json", "cover-letter-section")
	require.NoError(t, err)
	assert.Contains(t, section, "{{.CoverLetter}}")
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("interview.json", "score-resume")
	assert.ErrorContains(t, err, "prompt file interview.json not found")

	_, err = Get("scoring.json", "rank-candidates")
	assert.ErrorContains(t, err, `prompt key "rank-candidates" not found`)
}

func TestKeys(t *testing.T) {
	keys, err := Keys("scoring.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"cover-letter-section", "score-resume"}, keys)

	_, err = Keys("missing.json")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "replaces every occurrence",
			template: "Role {{.Title}} needs {{.Skills}}; {{.Title}} again",
			data:     map[string]string{"Title": "SRE", "Skills": "Go"},
			want:     "Role SRE needs Go; SRE again",
		},
		{
			name:     "unknown placeholder kept",
			template: "Hello {{.Name}}",
			data:     map[string]string{"Title": "x"},
			want:     "Hello {{.Name}}",
		},
		{
			name:     "nil data",
			template: "Hello {{.Name}}",
			want:     "Hello {{.Name}}",
		},
		{
			name:     "values are not re-expanded",
			template: "{{.A}} {{.B}}",
			data:     map[string]string{"A": "{{.B}}", "B": "b"},
			want:     "{{.B}} b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}
