package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/schemas"
	"github.com/jonathan/founder-match/internal/types"
)

// Batch-level validation failures
const (
	ReasonNoArray        = "response contains no JSON array"
	ReasonMalformed      = "response is not a valid JSON array"
	ReasonNoValidRecords = "no valid records in response"
)

// RecordIssue describes one discarded oracle record.
type RecordIssue struct {
	Index       int
	CandidateID string
	Reason      string
}

func (i RecordIssue) String() string {
	if i.CandidateID == "" {
		return fmt.Sprintf("record %d: %s", i.Index, i.Reason)
	}
	return fmt.Sprintf("record %d (%s): %s", i.Index, i.CandidateID, i.Reason)
}

// ValidationError means the oracle response as a whole is unusable.
type ValidationError struct {
	Reason string
	Issues []RecordIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid oracle response: " + e.Reason
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("invalid oracle response: %s (%s)", e.Reason, strings.Join(parts, "; "))
}

// oracleRecord is the wire shape of one element of the oracle's array.
type oracleRecord struct {
	CandidateID     string  `json:"candidate_id"`
	Score           float64 `json:"score"`
	ScorePercentage float64 `json:"score_percentage"`
	Reasoning       string  `json:"reasoning"`
}

// Validator turns raw oracle text into at most K ranked candidates.
type Validator struct {
	K         int
	Tolerance int // allowed distance between a stated percentage and round(score*100)
}

// NewValidator creates a Validator keeping the top k records.
func NewValidator(k, tolerance int) *Validator {
	return &Validator{K: k, Tolerance: tolerance}
}

// Validate parses raw, discards records that fail any check and returns the
// survivors sorted by descending score (oracle order on ties), truncated to K.
// Discarded records are reported alongside a successful result. The error is
// llm.ErrEmptyResponse or a *ValidationError when nothing usable remains.
func (v *Validator) Validate(raw string, pool []types.Profile) ([]Ranked, []RecordIssue, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, llm.ErrEmptyResponse
	}

	array, ok := llm.ExtractJSONArray(raw)
	if !ok {
		return nil, nil, &ValidationError{Reason: ReasonNoArray}
	}

	if err := schemas.Validate(schemas.RecommendationList, []byte(array)); err != nil {
		return nil, nil, &ValidationError{Reason: ReasonMalformed}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(array), &elements); err != nil {
		return nil, nil, &ValidationError{Reason: ReasonMalformed}
	}

	inPool := make(map[uuid.UUID]struct{}, len(pool))
	for i := range pool {
		inPool[pool[i].ID] = struct{}{}
	}

	var (
		ranked = make([]Ranked, 0, len(elements))
		issues []RecordIssue
		seen   = make(map[uuid.UUID]struct{}, len(elements))
	)
	for i, element := range elements {
		r, issue := v.checkRecord(i, element, inPool, seen)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		seen[r.CandidateID] = struct{}{}
		ranked = append(ranked, r)
	}

	if len(ranked) == 0 {
		return nil, issues, &ValidationError{Reason: ReasonNoValidRecords, Issues: issues}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if v.K > 0 && len(ranked) > v.K {
		ranked = ranked[:v.K]
	}
	return ranked, issues, nil
}

func (v *Validator) checkRecord(index int, element json.RawMessage, inPool, seen map[uuid.UUID]struct{}) (Ranked, *RecordIssue) {
	issue := func(id, reason string) *RecordIssue {
		return &RecordIssue{Index: index, CandidateID: id, Reason: reason}
	}

	if err := schemas.Validate(schemas.RecommendationItem, element); err != nil {
		var rec oracleRecord
		_ = json.Unmarshal(element, &rec)
		return Ranked{}, issue(rec.CandidateID, schemaReason(err))
	}

	var rec oracleRecord
	if err := json.Unmarshal(element, &rec); err != nil {
		return Ranked{}, issue("", "undecodable record")
	}

	id, err := uuid.Parse(rec.CandidateID)
	if err != nil {
		return Ranked{}, issue(rec.CandidateID, "candidate_id is not a uuid")
	}
	if _, ok := inPool[id]; !ok {
		return Ranked{}, issue(rec.CandidateID, "candidate_id not in submitted pool")
	}
	if _, dup := seen[id]; dup {
		return Ranked{}, issue(rec.CandidateID, "duplicate candidate_id")
	}

	// The stored percentage is always derived from score; the stated one only gates the record.
	derived := float64(types.ScorePercentage(rec.Score))
	if math.Abs(rec.ScorePercentage-derived) > float64(v.Tolerance) {
		return Ranked{}, issue(rec.CandidateID, fmt.Sprintf("score_percentage %v inconsistent with score %v", rec.ScorePercentage, rec.Score))
	}

	return Ranked{
		CandidateID: id,
		Score:       rec.Score,
		Reasoning:   strings.TrimSpace(rec.Reasoning),
		Source:      types.SourceOracle,
	}, nil
}

func schemaReason(err error) string {
	var ve *schemas.ValidationError
	if errors.As(err, &ve) && len(ve.Errors) > 0 {
		fe := ve.Errors[0]
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return err.Error()
}
