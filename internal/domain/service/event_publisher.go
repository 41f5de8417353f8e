package service

import (
	"context"
)

// BookingEvent represents a booking lifecycle change published for
// downstream consumers (reporting, notification fan-out).
type BookingEvent struct {
	RequestID  string `json:"request_id,omitempty"` // For distributed tracing
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	Action     string `json:"action"` // "created", "deleted" or "synced"
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	SyncStatus string `json:"sync_status,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishBookingEvent publishes a booking event for async processing
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
