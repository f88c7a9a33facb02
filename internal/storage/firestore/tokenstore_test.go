//go:build integration

package firestore_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-test/emulators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fs "github.com/jpco-admin/go-push-service/internal/storage/firestore"
	"github.com/jpco-admin/go-push-service/pkg/push"
)

func setupSuite(t *testing.T) (context.Context, *firestore.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	projectID := "test-push-store"
	conn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(projectID))
	client, err := firestore.NewClient(ctx, projectID, conn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return ctx, client
}

func TestTokenStore_Integration(t *testing.T) {
	ctx, client := setupSuite(t)
	store := fs.NewTokenStore(client)

	t.Run("Registration Lifecycle", func(t *testing.T) {
		err := store.Set(ctx, "emp-1", "token-abc")
		require.NoError(t, err)

		rec, err := store.Get(ctx, "emp-1")
		require.NoError(t, err)
		assert.Equal(t, "emp-1", rec.RecipientID)
		assert.Equal(t, "token-abc", rec.Token)
		assert.False(t, rec.UpdatedAt.IsZero())

		err = store.Delete(ctx, "emp-1")
		require.NoError(t, err)

		_, err = store.Get(ctx, "emp-1")
		assert.ErrorIs(t, err, push.ErrTokenNotFound)
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "emp-2", "old-token"))
		require.NoError(t, store.Set(ctx, "emp-2", "new-token"))

		rec, err := store.Get(ctx, "emp-2")
		require.NoError(t, err)
		assert.Equal(t, "new-token", rec.Token)
	})

	t.Run("Unknown recipient", func(t *testing.T) {
		_, err := store.Get(ctx, "nobody")
		assert.ErrorIs(t, err, push.ErrTokenNotFound)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-registered"))
		assert.NoError(t, store.Delete(ctx, "never-registered"))
	})
}

func TestHistoryStore_Integration(t *testing.T) {
	ctx, client := setupSuite(t)
	store := fs.NewHistoryStore(client)

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	outcomes := []push.Outcome{push.OutcomeSent, push.OutcomeSkipped, push.OutcomeFailed}
	for i, outcome := range outcomes {
		err := store.Append(ctx, push.HistoryRecord{
			RecipientID: "emp-9",
			Title:       "Roster",
			Body:        "Updated",
			Outcome:     outcome,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	// Another recipient's record must not leak into emp-9's page.
	require.NoError(t, store.Append(ctx, push.HistoryRecord{
		RecipientID: "emp-10",
		Title:       "Roster",
		Body:        "Updated",
		Outcome:     push.OutcomeSent,
		CreatedAt:   base,
	}))

	t.Run("ListRecent newest first", func(t *testing.T) {
		records, err := store.ListRecent(ctx, "emp-9", 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, push.OutcomeFailed, records[0].Outcome)
		assert.Equal(t, push.OutcomeSent, records[2].Outcome)
	})

	t.Run("ListRecent respects limit", func(t *testing.T) {
		records, err := store.ListRecent(ctx, "emp-9", 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}
