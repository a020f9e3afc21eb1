package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Order numbers are day-scoped display identifiers: the UTC calendar date as
// YYYYMMDD followed by a 3-digit zero-padded sequence, e.g. 20250114007.
// The zero padding keeps lexicographic order equal to numeric order within a
// day, which is what lets the generator derive the next sequence from a
// string-sorted "latest" lookup.
const (
	numberDateLayout = "20060102"
	sequenceDigits   = 3
	maxDailySequence = 999
)

var (
	// ErrDailyOrderLimit is returned when a day's 999-order sequence is
	// exhausted. The ceiling is a hard business rule; widening the suffix
	// would break lexicographic ordering of existing numbers.
	ErrDailyOrderLimit = errors.New("daily order number limit reached")

	// ErrNumberGeneration is returned when the generate-and-insert retry
	// budget is exhausted without winning the uniqueness race.
	ErrNumberGeneration = errors.New("failed to generate a unique order number")
)

// numberRetryBudget bounds the regenerate-and-reinsert loop used when two
// concurrent creations race to the same sequence number.
const numberRetryBudget = 5

// NumberStore is the lookup capability the generator needs from persistence.
type NumberStore interface {
	// LatestOrderNumberWithPrefix returns the lexicographically greatest
	// stored order number starting with prefix, or "" if none exists.
	LatestOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

// NumberGenerator mints the next daily order number from stored state.
// It performs no locking; uniqueness is enforced by the UNIQUE constraint on
// orders.order_number and callers retry on conflict.
type NumberGenerator struct {
	store NumberStore
	now   func() time.Time
}

func NewNumberGenerator(store NumberStore) *NumberGenerator {
	return &NumberGenerator{store: store, now: time.Now}
}

// Next computes today's prefix, finds the latest stored number under it and
// increments its sequence. The first order of a day gets sequence 001.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	prefix := g.now().UTC().Format(numberDateLayout)

	latest, err := g.store.LatestOrderNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("look up latest order number: %w", err)
	}

	sequence := 1
	if latest != "" {
		if len(latest) < sequenceDigits {
			return "", fmt.Errorf("malformed order number %q", latest)
		}
		last, err := strconv.Atoi(latest[len(latest)-sequenceDigits:])
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", latest, err)
		}
		sequence = last + 1
	}

	if sequence > maxDailySequence {
		return "", ErrDailyOrderLimit
	}

	return fmt.Sprintf("%s%0*d", prefix, sequenceDigits, sequence), nil
}
