package ranking

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/types"
)

func TestValidator_ValidArray(t *testing.T) {
	pool := testPool(3)
	raw := "[" + strings.Join([]string{
		record(pool[0].ID, 0.72, "Good overlap in fintech"),
		record(pool[1].ID, 0.91, "Scaled two payments startups"),
		record(pool[2].ID, 0.55, "Some relevant experience"),
	}, ",") + "]"

	ranked, issues, err := NewValidator(2, 1).Validate(raw, pool)

	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, ranked, 2)
	assert.Equal(t, pool[1].ID, ranked[0].CandidateID)
	assert.Equal(t, 0.91, ranked[0].Score)
	assert.Equal(t, pool[0].ID, ranked[1].CandidateID)
	assert.Equal(t, types.SourceOracle, ranked[0].Source)
}

func TestValidator_StripsFencesAndProse(t *testing.T) {
	pool := testPool(2)
	inner := "[" + record(pool[0].ID, 0.8, "a") + "," + record(pool[1].ID, 0.6, "b") + "]"

	tests := map[string]string{
		"json fence":     "```json\n" + inner + "\n```",
		"bare fence":     "```\n" + inner + "\n```",
		"leading prose":  "Here are my picks:\n" + inner,
		"trailing note":  inner + "\nThese are ranked best first.",
		"range in prose": "Scores are in [0,1]. Here you go:\n" + inner,
		"range in fence": "```json\n" + inner + "\n```\nScores use the [0, 1] scale.",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			ranked, _, err := NewValidator(2, 1).Validate(raw, pool)
			require.NoError(t, err)
			assert.Len(t, ranked, 2)
		})
	}
}

func TestValidator_StableOnTies(t *testing.T) {
	pool := testPool(3)
	raw := "[" + record(pool[2].ID, 0.7, "c") + "," + record(pool[0].ID, 0.7, "a") + "," + record(pool[1].ID, 0.7, "b") + "]"

	ranked, _, err := NewValidator(3, 1).Validate(raw, pool)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, pool[2].ID, ranked[0].CandidateID)
	assert.Equal(t, pool[0].ID, ranked[1].CandidateID)
	assert.Equal(t, pool[1].ID, ranked[2].CandidateID)
}

func TestValidator_DiscardsBadRecordsIndividually(t *testing.T) {
	pool := testPool(2)
	outsider := uuid.MustParse("99999999-9999-4999-8999-999999999999")

	raw := "[" + strings.Join([]string{
		record(outsider, 0.99, "Not in the pool"),
		fmt.Sprintf(`{"candidate_id":%q,"score":1.4,"reasoning":"too high"}`, pool[0].ID),
		fmt.Sprintf(`{"candidate_id":%q,"score":0.9,"reasoning":""}`, pool[0].ID),
		fmt.Sprintf(`{"candidate_id":%q,"score":"0.9","reasoning":"string score"}`, pool[0].ID),
		fmt.Sprintf(`{"candidate_id":%q,"score":0.9,"score_percentage":40,"reasoning":"inconsistent"}`, pool[0].ID),
		`"not an object"`,
		`{"candidate_id":"not-a-uuid","score":0.5,"reasoning":"bad id"}`,
		record(pool[1].ID, 0.66, "The only good one"),
	}, ",") + "]"

	ranked, issues, err := NewValidator(2, 1).Validate(raw, pool)

	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, pool[1].ID, ranked[0].CandidateID)
	assert.Equal(t, "The only good one", ranked[0].Reasoning)
	assert.Len(t, issues, 7)
	assert.Equal(t, 0, issues[0].Index)
	assert.Contains(t, issues[0].Reason, "not in submitted pool")
	assert.Contains(t, issues[4].Reason, "inconsistent")
}

func TestValidator_PercentageTolerance(t *testing.T) {
	pool := testPool(1)
	tests := []struct {
		name string
		pct  string
		ok   bool
	}{
		{"exact", "85", true},
		{"within one", "86", true},
		{"float within one", "84.5", true},
		{"off by two", "87", false},
		{"above range", "185", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct := ""
			if tt.pct != "" {
				pct = `"score_percentage":` + tt.pct + ","
			}
			raw := fmt.Sprintf(`[{"candidate_id":%q,"score":0.85,%s"reasoning":"x"}]`, pool[0].ID, pct)
			ranked, _, err := NewValidator(2, 1).Validate(raw, pool)
			if tt.ok {
				require.NoError(t, err)
				assert.Len(t, ranked, 1)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, ReasonNoValidRecords, ve.Reason)
		})
	}
}

func TestValidator_DuplicateCandidateKeepsFirst(t *testing.T) {
	pool := testPool(2)
	raw := "[" + record(pool[0].ID, 0.6, "first") + "," + record(pool[0].ID, 0.9, "second") + "]"

	ranked, issues, err := NewValidator(2, 1).Validate(raw, pool)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "first", ranked[0].Reasoning)
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicate candidate_id", issues[0].Reason)
}

func TestValidator_BatchFailures(t *testing.T) {
	pool := testPool(2)

	tests := []struct {
		name       string
		raw        string
		wantReason string
	}{
		{"prose only", "I'm sorry, I cannot rank these candidates.", ReasonNoArray},
		{"object instead of array", `{"candidate_id":"x"}`, ReasonNoArray},
		{"empty array", `[]`, ReasonNoValidRecords},
		{"all invalid", `[{"score": 2}]`, ReasonNoValidRecords},
		{"truncated array", `[{"candidate_id": "a", "score": 0.5`, ReasonNoArray},
		{"array of numbers", `[0.9, 0.8]`, ReasonNoArray},
		{"only a range", "Scores are in [0,1] but I found no matches.", ReasonNoArray},
		{"broken object", `[{candidate_id: 1}]`, ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, _, err := NewValidator(2, 1).Validate(tt.raw, pool)
			assert.Nil(t, ranked)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.wantReason, ve.Reason)
		})
	}
}

func TestValidator_EmptyResponse(t *testing.T) {
	_, _, err := NewValidator(2, 1).Validate("  \n", testPool(2))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Reason: ReasonNoValidRecords,
		Issues: []RecordIssue{{Index: 0, CandidateID: "abc", Reason: "candidate_id is not a uuid"}},
	}
	assert.Equal(t, "invalid oracle response: no valid records in response (record 0 (abc): candidate_id is not a uuid)", err.Error())
	assert.Equal(t, "invalid oracle response: response contains no JSON array", (&ValidationError{Reason: ReasonNoArray}).Error())
}
