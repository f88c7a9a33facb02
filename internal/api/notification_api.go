// Package api exposes the HTTP surface: dispatch, token lifecycle and the
// notification history view.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

// Sender is the dispatch core as the HTTP layer sees it.
type Sender interface {
	Dispatch(ctx context.Context, recipientIDs []string, title, body string, data map[string]string) (*push.DispatchResult, error)
}

type NotificationAPI struct {
	Sender  Sender
	History push.HistoryReader
	Logger  *slog.Logger
}

func NewNotificationAPI(sender Sender, history push.HistoryReader, logger *slog.Logger) *NotificationAPI {
	return &NotificationAPI{
		Sender:  sender,
		History: history,
		Logger:  logger,
	}
}

type SendRequest struct {
	UserIDs []string          `json:"userIds"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}

type SendResponse struct {
	Message   string               `json:"message"`
	TotalTime string               `json:"totalTime"`
	Sent      []push.SentReceipt   `json:"sent"`
	Errors    []push.DispatchError `json:"errors,omitempty"`
}

// Send fans a notification out to the requested users. Partial failure is not
// an HTTP error: the 200 body carries both sent receipts and per-user errors.
func (api *NotificationAPI) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := api.Sender.Dispatch(ctx, req.UserIDs, req.Title, req.Body, req.Data)
	if errors.Is(err, push.ErrInvalidRequest) {
		response.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		api.Logger.Error("dispatch failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	writeJSON(w, http.StatusOK, SendResponse{
		Message:   "Notifications processed",
		TotalTime: fmt.Sprintf("%dms", result.TotalElapsedMs),
		Sent:      result.Sent,
		Errors:    result.Errors,
	})
}

type HistoryResponse struct {
	Notifications []push.HistoryRecord `json:"notifications"`
}

// ListHistory returns the caller's recent delivery attempts, newest first.
func (api *NotificationAPI) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserHandleFromContext(ctx)
	if !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.WriteJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := api.History.ListRecent(ctx, userID, limit)
	if err != nil {
		api.Logger.Error("failed to list history", "user", userID, "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Notifications: records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
