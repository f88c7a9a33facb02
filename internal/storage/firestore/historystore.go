package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

const (
	historyCollection = "notification_history"
	defaultListLimit  = 50
	maxListLimit      = 200
)

// HistoryStore is the append-only log of delivery attempts. Records get
// auto-generated document ids; nothing here updates or deletes them.
type HistoryStore struct {
	client *firestore.Client
}

func NewHistoryStore(client *firestore.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func (s *HistoryStore) Append(ctx context.Context, rec push.HistoryRecord) error {
	_, _, err := s.client.Collection(historyCollection).Add(ctx, rec)
	if err != nil {
		return fmt.Errorf("firestore history append failed: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records for a recipient, newest first. It
// backs the dashboard's notification history view.
func (s *HistoryStore) ListRecent(ctx context.Context, recipientID string, limit int) ([]push.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	iter := s.client.Collection(historyCollection).
		Where("recipient_id", "==", recipientID).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	records := make([]push.HistoryRecord, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore history iteration failed: %w", err)
		}

		var rec push.HistoryRecord
		if err := snap.DataTo(&rec); err != nil {
			// Corrupt rows are skipped rather than failing the page.
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
