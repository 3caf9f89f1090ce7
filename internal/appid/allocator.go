// Package appid allocates the human-facing application IDs of the form
// TCE<year><seq>, with a four-digit zero-padded sequence scoped to the
// calendar year.
package appid

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"careerportal/internal/database"
)

const (
	prefix = "TCE"

	// maxSequence is fixed by the four-digit suffix. Allocation fails loudly
	// once a year exhausts it instead of widening the format.
	maxSequence = 9999
)

// ErrSequenceExhausted is returned when a year has used all 9999 IDs.
var ErrSequenceExhausted = errors.New("appid: yearly sequence exhausted")

// Next returns the next unused application ID for the given year, e.g.
// TCE20260001. The sequence is advanced through an atomic counter row so two
// concurrent submissions cannot receive the same ID.
func Next(ctx context.Context, db *gorm.DB, year int) (string, error) {
	seq, err := nextSequence(ctx, db, year)
	if err != nil {
		return "", err
	}
	if seq > maxSequence {
		return "", fmt.Errorf("%w: year %d", ErrSequenceExhausted, year)
	}
	return fmt.Sprintf("%s%d%04d", prefix, year, seq), nil
}

func nextSequence(ctx context.Context, db *gorm.DB, year int) (int, error) {
	if db.Dialector.Name() == "postgres" {
		var seq int
		err := db.WithContext(ctx).Raw(
			`INSERT INTO application_sequences (year, last_seq) VALUES (?, 1)
			 ON CONFLICT (year) DO UPDATE SET last_seq = application_sequences.last_seq + 1
			 RETURNING last_seq`,
			year,
		).Scan(&seq).Error
		if err != nil {
			return 0, fmt.Errorf("advance sequence for %d: %w", year, err)
		}
		return seq, nil
	}

	// Transactional read-increment for dialects without an upsert that
	// returns the new value (tests run on sqlite).
	var seq int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row database.ApplicationSequence
		switch err := tx.Where("year = ?", year).First(&row).Error; {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = database.ApplicationSequence{Year: year, LastSeq: 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			row.LastSeq++
			if err := tx.Model(&database.ApplicationSequence{}).
				Where("year = ?", year).
				Update("last_seq", row.LastSeq).Error; err != nil {
				return err
			}
		}
		seq = row.LastSeq
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("advance sequence for %d: %w", year, err)
	}
	return seq, nil
}
