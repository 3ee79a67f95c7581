package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/prompts"
	"github.com/jonathan/founder-match/internal/types"
)

// Oracle is the external scoring service. It returns free-form text expected
// to contain a JSON array of scored candidates.
type Oracle interface {
	Score(ctx context.Context, subject *types.Profile, pool []types.Profile, k int) (string, error)
}

// OracleError wraps any failure to obtain a response from the oracle.
type OracleError struct {
	Cause       error
	Timeout     bool
	CircuitOpen bool
}

func (e *OracleError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("scoring oracle timed out: %v", e.Cause)
	case e.CircuitOpen:
		return fmt.Sprintf("scoring oracle unavailable: %v", e.Cause)
	default:
		return fmt.Sprintf("scoring oracle failed: %v", e.Cause)
	}
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// Reason returns a short label for metrics and logs.
func (e *OracleError) Reason() string {
	switch {
	case e.Timeout:
		return "timeout"
	case e.CircuitOpen:
		return "circuit_open"
	case errors.Is(e.Cause, llm.ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}

// LLMOracle scores candidates by prompting a language model.
type LLMOracle struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
}

// NewLLMOracle creates an oracle over client. A zero timeout disables the bound.
func NewLLMOracle(client llm.Client, tier llm.ModelTier, timeout time.Duration) *LLMOracle {
	if tier == "" {
		tier = llm.TierStandard
	}
	return &LLMOracle{client: client, tier: tier, timeout: timeout}
}

// Score asks the model to rank pool for subject. Every failure, including an
// exceeded timeout, is returned as an *OracleError.
func (o *LLMOracle) Score(ctx context.Context, subject *types.Profile, pool []types.Profile, k int) (string, error) {
	prompt, err := BuildPrompt(subject, pool, k)
	if err != nil {
		return "", &OracleError{Cause: err}
	}

	logging.Ctx(ctx).Debug().
		Str("model", o.client.GetModel(o.tier)).
		Int("pool_size", len(pool)).
		Msg("requesting candidate scores")

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	text, err := o.client.GenerateJSON(ctx, prompt, o.tier)
	if err != nil {
		return "", &OracleError{
			Cause:       err,
			Timeout:     errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			CircuitOpen: llm.IsCircuitOpen(err),
		}
	}
	return text, nil
}

// promptProfile is the subset of a profile shown to the model. Names and avatars
// are left out; candidates are referred to by id only.
type promptProfile struct {
	ID               string   `json:"id"`
	Role             string   `json:"role"`
	Bio              string   `json:"bio,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Industries       []string `json:"industries,omitempty"`
	Availability     string   `json:"availability,omitempty"`
	Preferences      []string `json:"preferences,omitempty"`
	ExpertiseDomains []string `json:"expertise_domains,omitempty"`
	YearsExperience  int      `json:"years_experience,omitempty"`
}

func toPromptProfile(p *types.Profile) promptProfile {
	return promptProfile{
		ID:               p.ID.String(),
		Role:             string(p.Role),
		Bio:              p.Bio,
		Skills:           p.Skills,
		Industries:       p.Industries,
		Availability:     p.Availability,
		Preferences:      p.Preferences,
		ExpertiseDomains: p.ExpertiseDomains,
		YearsExperience:  p.YearsExperience,
	}
}

// BuildPrompt renders the ranking prompt for subject and pool.
func BuildPrompt(subject *types.Profile, pool []types.Profile, k int) (string, error) {
	subjectJSON, err := json.Marshal(toPromptProfile(subject))
	if err != nil {
		return "", fmt.Errorf("failed to encode subject: %w", err)
	}

	candidates := make([]promptProfile, 0, len(pool))
	for i := range pool {
		candidates = append(candidates, toPromptProfile(&pool[i]))
	}
	poolJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode candidate pool: %w", err)
	}

	candidateRole, ok := types.ComplementaryRole(subject.Role)
	if !ok {
		candidateRole = types.Role("match")
	}

	template, err := prompts.Get("matching.json", "rank-candidates")
	if err != nil {
		return "", err
	}
	return prompts.Format(template, map[string]string{
		"SubjectRole":   string(subject.Role),
		"CandidateRole": string(candidateRole),
		"Subject":       string(subjectJSON),
		"Candidates":    string(poolJSON),
		"K":             strconv.Itoa(k),
	}), nil
}
