package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/types"
)

var recommendationColumns = []string{
	"subject_id", "candidate_id", "score", "score_percentage", "reasoning", "source", "created_at",
}

// recommendationRow is the untyped shape of a cache row before validation.
type recommendationRow struct {
	SubjectID       uuid.UUID
	CandidateID     uuid.UUID
	Score           float64
	ScorePercentage int
	Reasoning       string
	Source          string
	CreatedAt       time.Time
}

// toRecord converts a row into a validated record.
func (r *recommendationRow) toRecord() (types.Recommendation, error) {
	rec := types.Recommendation{
		SubjectID:       r.SubjectID,
		CandidateID:     r.CandidateID,
		Score:           r.Score,
		ScorePercentage: r.ScorePercentage,
		Reasoning:       r.Reasoning,
		Source:          types.Source(r.Source),
		CreatedAt:       r.CreatedAt,
	}
	if err := rec.Validate(); err != nil {
		return types.Recommendation{}, err
	}
	return rec, nil
}

// freshnessCutoff returns the oldest created_at still inside window at now.
func freshnessCutoff(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}

// GetRecommendations returns the subject's cached records created less than
// window ago, newest first. Rows that fail validation are skipped.
func (db *DB) GetRecommendations(ctx context.Context, subjectID uuid.UUID, window time.Duration) ([]types.Recommendation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT subject_id, candidate_id, score, score_percentage, reasoning, source, created_at
		 FROM recommendations
		 WHERE subject_id = $1 AND created_at > $2
		 ORDER BY created_at DESC, score DESC`,
		subjectID, freshnessCutoff(db.now(), window),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var out []types.Recommendation
	for rows.Next() {
		var row recommendationRow
		if err := rows.Scan(&row.SubjectID, &row.CandidateID, &row.Score, &row.ScorePercentage,
			&row.Reasoning, &row.Source, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("candidate_id", row.CandidateID.String()).Msg("skipping invalid cached recommendation")
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return out, nil
}

// DeleteRecommendations removes every cached record for the subject.
func (db *DB) DeleteRecommendations(ctx context.Context, subjectID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM recommendations WHERE subject_id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}

// InsertRecommendations appends records for the subject with COPY.
func (db *DB) InsertRecommendations(ctx context.Context, subjectID uuid.UUID, records []types.Recommendation) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for i := range records {
		rec := &records[i]
		if rec.SubjectID != subjectID {
			return fmt.Errorf("record %d belongs to subject %s, not %s", i, rec.SubjectID, subjectID)
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("invalid record %d: %w", i, err)
		}
		rows = append(rows, []any{
			rec.SubjectID, rec.CandidateID, rec.Score, rec.ScorePercentage,
			rec.Reasoning, string(rec.Source), rec.CreatedAt,
		})
	}

	_, err := db.pool.CopyFrom(ctx, pgx.Identifier{"recommendations"}, recommendationColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert recommendations: %w", err)
	}
	return nil
}
