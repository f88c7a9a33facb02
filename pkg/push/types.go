// Package push contains the public domain models and collaborator interfaces
// for the push notification service.
package push

import "time"

// Message is the caller-supplied notification content. It is immutable once
// constructed and fanned out unchanged to every resolved token.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Envelope is the platform-neutral message handed to a Provider. On top of the
// caller's Message it carries the synthesized presentation fields and a
// correlation id for tracing a single fan-out attempt.
type Envelope struct {
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Icon          string            `json:"icon,omitempty"`
	Badge         string            `json:"badge,omitempty"`
	URL           string            `json:"url"`
	Type          string            `json:"type"`
	SentAt        time.Time         `json:"sentAt"`
	CorrelationID string            `json:"correlationId"`
	Data          map[string]string `json:"data,omitempty"`
}

// DeviceTokenRecord maps a recipient to their single active device token.
// Last write wins; there is no device multiplicity.
type DeviceTokenRecord struct {
	RecipientID string    `json:"recipientId"`
	Token       string    `json:"token"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Outcome classifies a single delivery attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// HistoryRecord is one append-only audit entry per recipient per dispatch
// call, written regardless of outcome.
type HistoryRecord struct {
	RecipientID       string            `json:"recipientId" firestore:"recipient_id"`
	Token             string            `json:"token,omitempty" firestore:"token,omitempty"`
	Title             string            `json:"title" firestore:"title"`
	Body              string            `json:"body" firestore:"body"`
	Data              map[string]string `json:"data,omitempty" firestore:"data,omitempty"`
	Outcome           Outcome           `json:"outcome" firestore:"outcome"`
	ProviderMessageID string            `json:"providerMessageId,omitempty" firestore:"provider_message_id,omitempty"`
	ErrorDetail       string            `json:"errorDetail,omitempty" firestore:"error_detail,omitempty"`
	CorrelationID     string            `json:"correlationId,omitempty" firestore:"correlation_id,omitempty"`
	CreatedAt         time.Time         `json:"createdAt" firestore:"created_at"`
}

// SentReceipt records one successful provider submission. ElapsedMs is
// measured from the start of the whole dispatch call, so later-completing
// recipients show larger values.
type SentReceipt struct {
	RecipientID string `json:"recipientId"`
	MessageID   string `json:"messageId"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// DispatchError records one per-recipient failure inside an otherwise
// successful call.
type DispatchError struct {
	RecipientID string `json:"recipientId"`
	Error       string `json:"error"`
}

// DispatchResult aggregates one fan-out. Exactly one entry exists per input
// recipient across Sent and Errors; ordering follows completion, not input.
type DispatchResult struct {
	Sent           []SentReceipt   `json:"sent"`
	Errors         []DispatchError `json:"errors,omitempty"`
	TotalElapsedMs int64           `json:"totalElapsedMs"`
}
