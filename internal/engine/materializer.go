package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finflow/internal/logger"
)

// MaterializeDue persists every instance of the user's active recurring
// definitions whose date lies in (lastCreatedDate, asOf] and advances
// each definition's cursor. Returns the number of newly persisted
// instances.
//
// Emission is at-most-once per (definition, index): instance ids are
// deterministic and the store upserts on them, so a retry or a
// concurrent call collapses into the same set of rows. The cursor update
// is compare-and-set to the greater value, so lastCreatedDate only moves
// forward.
func (e *Engine) MaterializeDue(ctx context.Context, userID string, asOf time.Time) (int, error) {
	defs, err := e.store.ListRecurringDefinitions(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("list definitions: %w", err)
	}

	total := 0
	for i := range defs {
		def := &defs[i]

		instances, err := Expand(def, def.StartDate, asOf)
		if err != nil {
			if errors.Is(err, ErrInvalidDefinition) {
				logger.Log.Warn().Err(err).
					Str("definition_id", def.ID).
					Str("user_hash", logger.HashUserID(userID)).
					Msg("Skipping invalid recurring definition")
				continue
			}
			return total, err
		}

		emitted := 0
		lastIndex := -1
		var lastDate time.Time
		for _, inst := range instances {
			// The cursor is an exclusive lower bound: anything at or
			// before it has already been materialized.
			if def.LastCreatedDate != nil && !inst.Date.After(*def.LastCreatedDate) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return total, err
			}

			inserted, err := e.store.UpsertTransaction(ctx, inst.Transaction(userID))
			if err != nil {
				return total, fmt.Errorf("upsert instance %s: %w", inst.ID, err)
			}
			if inserted {
				emitted++
			}
			lastIndex = inst.InstanceIndex
			lastDate = inst.Date
		}

		if lastIndex < 0 {
			continue
		}

		def.LastCreatedDate = &lastDate
		def.CreatedInstances = lastIndex + 1
		if def.Occurrences != nil && def.CreatedInstances >= *def.Occurrences {
			def.Active = false
		}

		applied, err := e.store.WriteDefinition(ctx, def)
		if err != nil {
			// Instances already written under deterministic ids; a
			// later call re-derives the same set without duplicating.
			return total + emitted, fmt.Errorf("advance cursor for %s: %w", def.ID, err)
		}
		if !applied {
			logger.Log.Debug().
				Str("definition_id", def.ID).
				Msg("Cursor already advanced by a concurrent call")
		}

		total += emitted
		if emitted > 0 {
			logger.Log.Info().
				Str("definition_id", def.ID).
				Str("user_hash", logger.HashUserID(userID)).
				Int("emitted", emitted).
				Time("cursor", lastDate).
				Bool("active", def.Active).
				Msg("Materialized recurring instances")
		}
	}

	return total, nil
}
