// Package firestore implements the token and history stores on Google Cloud
// Firestore.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

const tokenCollection = "device_tokens"

// TokenStore keeps one document per recipient under device_tokens/{recipientID}.
// Registration overwrites the document, so the last write wins and there is
// never device multiplicity.
type TokenStore struct {
	client *firestore.Client
}

func NewTokenStore(client *firestore.Client) *TokenStore {
	return &TokenStore{client: client}
}

// tokenDoc is the internal DB representation.
type tokenDoc struct {
	Token     string    `firestore:"token"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (s *TokenStore) Get(ctx context.Context, recipientID string) (push.DeviceTokenRecord, error) {
	snap, err := s.docRef(recipientID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return push.DeviceTokenRecord{}, push.ErrTokenNotFound
	}
	if err != nil {
		return push.DeviceTokenRecord{}, fmt.Errorf("firestore get failed: %w", err)
	}

	var doc tokenDoc
	if err := snap.DataTo(&doc); err != nil {
		return push.DeviceTokenRecord{}, fmt.Errorf("corrupt token document for %s: %w", recipientID, err)
	}

	return push.DeviceTokenRecord{
		RecipientID: recipientID,
		Token:       doc.Token,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (s *TokenStore) Set(ctx context.Context, recipientID, token string) error {
	_, err := s.docRef(recipientID).Set(ctx, tokenDoc{
		Token:     token,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("firestore set failed: %w", err)
	}
	return nil
}

// Delete removes the record. Firestore deletes are idempotent: deleting an
// absent document is not an error, which the dispatcher's self-healing
// cleanup relies on.
func (s *TokenStore) Delete(ctx context.Context, recipientID string) error {
	_, err := s.docRef(recipientID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore delete failed: %w", err)
	}
	return nil
}

func (s *TokenStore) docRef(recipientID string) *firestore.DocumentRef {
	return s.client.Collection(tokenCollection).Doc(recipientID)
}
