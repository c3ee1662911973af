package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
)

func TestUnwindReversesOrder(t *testing.T) {
	ledger := New()
	var order []string

	for _, name := range []string{"first", "second", "third"} {
		name := name
		ledger.Record(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	cause := errors.New("step failed")
	err := ledger.Unwind(context.Background(), cause)

	assert.Equal(t, cause, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, ledger.Len())
}

func TestUnwindSkipsNilUndo(t *testing.T) {
	ledger := New()
	ran := false
	ledger.Record("no-op", nil)
	ledger.Record("real", func(ctx context.Context) error {
		ran = true
		return nil
	})

	err := ledger.Unwind(context.Background(), errors.New("boom"))
	require.Error(t, err)
	assert.True(t, ran)
}

func TestUnwindReportsFailedSteps(t *testing.T) {
	ledger := New()
	undoErr := errors.New("undo broke")
	ledger.Record("ok", func(ctx context.Context) error { return nil })
	ledger.Record("bad", func(ctx context.Context) error { return undoErr })

	cause := errors.New("original failure")
	err := ledger.Unwind(context.Background(), cause)

	var rbErr *apperrors.RollbackError
	require.ErrorAs(t, err, &rbErr)
	assert.Equal(t, cause, rbErr.Cause)
	assert.Equal(t, []string{"bad"}, rbErr.FailedSteps)
	require.Len(t, rbErr.StepErrs, 1)
	assert.Equal(t, undoErr, rbErr.StepErrs[0])
	// The original cause stays reachable through the chain.
	assert.ErrorIs(t, err, cause)
}

func TestUnwindContinuesAfterFailure(t *testing.T) {
	ledger := New()
	var order []string
	ledger.Record("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	ledger.Record("second", func(ctx context.Context) error {
		order = append(order, "second")
		return errors.New("second undo failed")
	})
	ledger.Record("third", func(ctx context.Context) error {
		order = append(order, "third")
		return nil
	})

	err := ledger.Unwind(context.Background(), errors.New("boom"))

	var rbErr *apperrors.RollbackError
	require.ErrorAs(t, err, &rbErr)
	// A failed undo does not stop the remaining compensations.
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, []string{"second"}, rbErr.FailedSteps)
}

func TestDiscardDropsSteps(t *testing.T) {
	ledger := New()
	ran := false
	ledger.Record("step", func(ctx context.Context) error {
		ran = true
		return nil
	})

	ledger.Discard()
	err := ledger.Unwind(context.Background(), errors.New("boom"))

	require.Error(t, err)
	assert.False(t, ran)
}
