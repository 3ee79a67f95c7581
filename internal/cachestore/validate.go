package cachestore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/types"
)

func validateBatch(subjectID uuid.UUID, records []types.Recommendation) error {
	for i := range records {
		rec := &records[i]
		if rec.SubjectID != subjectID {
			return fmt.Errorf("record %d belongs to subject %s, not %s", i, rec.SubjectID, subjectID)
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("invalid record %d: %w", i, err)
		}
	}
	return nil
}
