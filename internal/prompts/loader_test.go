package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("matching.json", "rank-candidates")
	require.NoError(t, err)
	assert.Contains(t, prompt, "candidate_id")
	assert.Contains(t, prompt, "score_percentage")

	again, err := Get("matching.json", "rank-candidates")
	require.NoError(t, err)
	assert.Equal(t, prompt, again)
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get("matching.json", "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]string
		want string
	}{
		{
			name: "fills placeholders",
			tmpl: "Find {{.K}} matches for a {{.SubjectRole}}",
			data: map[string]string{"K": "2", "SubjectRole": "founder"},
			want: "Find 2 matches for a founder",
		},
		{
			name: "repeated placeholder",
			tmpl: "{{.K}} of {{.K}}",
			data: map[string]string{"K": "3"},
			want: "3 of 3",
		},
		{
			name: "no placeholders",
			tmpl: "No placeholders here",
			data: map[string]string{"Key": "Value"},
			want: "No placeholders here",
		},
		{
			name: "unknown placeholder kept",
			tmpl: "Hello {{.Name}}",
			data: map[string]string{},
			want: "Hello {{.Name}}",
		},
		{
			name: "values are not expanded again",
			tmpl: "Subject: {{.Subject}} | Pick {{.K}}",
			data: map[string]string{"Subject": `{"bio":"I mentor {{.K}} teams"}`, "K": "2"},
			want: `Subject: {"bio":"I mentor {{.K}} teams"} | Pick 2`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.tmpl, tt.data))
		})
	}
}

func TestRankCandidatesPlaceholders(t *testing.T) {
	prompt, err := Get("matching.json", "rank-candidates")
	require.NoError(t, err)

	formatted := Format(prompt, map[string]string{
		"SubjectRole":   "founder",
		"CandidateRole": "mentor",
		"Subject":       `{"name":"Ada"}`,
		"Candidates":    "[]",
		"K":             "2",
	})
	assert.NotContains(t, formatted, "{{.")
	assert.Contains(t, formatted, `{"name":"Ada"}`)
}
