package models

import "time"

// Статусы, которые движок проставляет сам. Словарь открытый:
// курьерский API может вернуть любую строку, и мы её сохраняем как есть.
const (
	ParcelStatusPending   = "pending"
	ParcelStatusInTransit = "in_transit"
	ParcelStatusDelivered = "delivered"
	ParcelStatusException = "exception"
	ParcelStatusUnknown   = "unknown"
)

// Метки курьеров, которые пишет классификатор.
const (
	CourierUPS     = "UPS"
	CourierFedEx   = "FedEx"
	CourierUnknown = "Unknown"
)

// CompanyUnknown — company-метка по умолчанию, когда отправитель не распознан.
const CompanyUnknown = "unknown"

// Parcel — посылка, ключ — трек-номер. CreatedAt неизменен после первой записи;
// LastUpdated двигается только когда refresh реально меняет (status, eta).
type Parcel struct {
	TrackingNumber string
	Courier        string
	Company        string
	Status         string
	ETA            *string
	LastUpdated    time.Time
	EmailSubject   *string
	CreatedAt      time.Time
}
