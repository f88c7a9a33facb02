package push

import "context"

// TokenStore manages the single active device token per recipient.
// Implementations must be safe for concurrent use from multiple in-flight
// recipient tasks.
type TokenStore interface {
	// Get returns the current token record, or ErrTokenNotFound.
	Get(ctx context.Context, recipientID string) (DeviceTokenRecord, error)

	// Set creates or overwrites the token for a recipient (last write wins).
	Set(ctx context.Context, recipientID, token string) error

	// Delete removes the token record. Deleting an absent record is not an
	// error; the dispatcher relies on this for self-healing cleanup.
	Delete(ctx context.Context, recipientID string) error
}

// Provider submits one envelope to one device token and returns the provider's
// message identifier. Delivery failures are reported as *ProviderError so the
// dispatcher can classify them.
type Provider interface {
	Send(ctx context.Context, env Envelope, token string) (string, error)
}

// HistoryStore is the append-only audit log of delivery attempts. The
// dispatcher never updates or deletes history entries.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
}

// HistoryReader serves the dashboard's notification history view.
type HistoryReader interface {
	// ListRecent returns up to limit records for a recipient, newest first.
	ListRecent(ctx context.Context, recipientID string, limit int) ([]HistoryRecord, error)
}
