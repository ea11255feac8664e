package payment

import (
	"errors"
	"fmt"
	"testing"

	"paygate/kit/db"

	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("message is the bare reason", func(t *testing.T) {
		err := NewValidationError("payment %s was voided and never charged", "p1")

		require.EqualError(t, err, "payment p1 was voided and never charged")
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := fmt.Errorf("handling request: %w", NewValidationError("amount must be positive, got %d", -1))

		require.True(t, IsValidation(err))
	})

	t.Run("not confused with storage errors", func(t *testing.T) {
		require.False(t, IsValidation(db.ErrNotFound))
		require.False(t, IsValidation(errors.New("boom")))
		require.False(t, IsValidation(nil))
	})
}
