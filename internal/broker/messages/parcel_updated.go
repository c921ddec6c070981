package messages

import "time"

// ParcelUpdated публикуется после каждой сверки, изменившей запись о посылке.
type ParcelUpdated struct {
	TrackingNumber string    `json:"tracking_number"`
	Courier        string    `json:"courier"`
	Company        string    `json:"company"`
	Status         string    `json:"status"`
	ETA            *string   `json:"eta,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}
