package webhook

import (
	"context"
	"testing"
	"time"

	"paygate/kit/db"

	"github.com/stretchr/testify/require"
)

func TestSQLRepository(t *testing.T) {
	ctx := context.Background()
	client, err := db.NewMockClient()
	require.NoError(t, err)
	repo := NewSQLRepository(client)

	t.Run("get missing event", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		require.True(t, db.IsNotFound(err))
	})

	t.Run("save and get round trip", func(t *testing.T) {
		e := &Event{
			EventID:    "evt-1",
			EventType:  EventTypeRefundCreated,
			Payload:    []byte(`{"payment_id":"p1","amount":500}`),
			Signature:  "sha512=abc",
			ReceivedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, repo.Save(ctx, e))

		got, err := repo.Get(ctx, "evt-1")
		require.NoError(t, err)
		require.Equal(t, e.EventID, got.EventID)
		require.Equal(t, e.EventType, got.EventType)
		require.JSONEq(t, string(e.Payload), string(got.Payload))
		require.Equal(t, e.Signature, got.Signature)
		require.True(t, e.ReceivedAt.Equal(got.ReceivedAt))
		require.False(t, got.Processed)
	})

	t.Run("duplicate event id conflicts", func(t *testing.T) {
		err := repo.Save(ctx, &Event{EventID: "evt-1", EventType: EventTypePaymentSettled, Payload: []byte(`{}`), ReceivedAt: time.Now()})
		require.True(t, db.IsConflict(err))
	})

	t.Run("mark processed", func(t *testing.T) {
		require.NoError(t, repo.MarkProcessed(ctx, "evt-1"))

		got, err := repo.Get(ctx, "evt-1")
		require.NoError(t, err)
		require.True(t, got.Processed)
	})

	t.Run("mark processed on unknown event", func(t *testing.T) {
		err := repo.MarkProcessed(ctx, "missing")
		require.True(t, db.IsNotFound(err))
	})
}

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	e := &Event{EventID: "evt-1", EventType: EventTypeRefundCreated, Payload: []byte(`{}`), ReceivedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, e))
	require.True(t, db.IsConflict(repo.Save(ctx, e)))

	got, err := repo.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.False(t, got.Processed)

	require.NoError(t, repo.MarkProcessed(ctx, "evt-1"))
	got, err = repo.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.True(t, got.Processed)
}
