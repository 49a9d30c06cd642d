package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"frota/internal/auth"
	"frota/internal/model"
	"frota/internal/repository"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// ChildWarning reports a posted child row that was not saved.
type ChildWarning struct {
	Collection string `json:"collection"`
	Index      *int   `json:"index,omitempty"`
	ID         uint   `json:"id,omitempty"`
	Reason     string `json:"reason"`
}

// RideEventPublisher pushes ride changes to the live dispatch board.
type RideEventPublisher interface {
	PublishRideEvent(kind string, ride RideResponse)
}

// RideCompletionNotifier sends the completed-ride receipt.
type RideCompletionNotifier interface {
	RideCompleted(ctx context.Context, ride *model.Ride) error
}

type noopPublisher struct{}

func (noopPublisher) PublishRideEvent(string, RideResponse) {}

// recordAudit writes an audit row in the caller's transaction.
func recordAudit(ctx context.Context, repo repository.AuditRepository, action string, entityID uint, entityName string, details interface{}) error {
	payload := "{}"
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		payload = string(raw)
	}

	entry := &model.AuditLog{
		UserID:     auth.ActorID(ctx),
		Action:     action,
		EntityID:   strconv.FormatUint(uint64(entityID), 10),
		EntityName: entityName,
		Details:    payload,
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, limit
}

// statusOrDefault parses a record status, defaulting blank input to Active.
func statusOrDefault(raw string) (model.RecordStatus, bool) {
	if raw == "" {
		return model.StatusActive, true
	}
	status := model.ParseRecordStatus(raw)
	return status, status != ""
}
