package courier

import (
	"context"

	"github.com/BearBump/ParcelBox/internal/models"
)

type Result struct {
	Status string
	ETA    *string
}

// Tracker — способность одного курьера: умеет ли он этот номер и как его опросить.
type Tracker interface {
	CanHandle(trackingNumber, company string) bool
	Track(ctx context.Context, trackingNumber string) (Result, error)
}

// Registry перебирает трекеры по порядку; терминальный Generic добавляется
// при создании, поэтому Get всегда что-то возвращает.
type Registry struct {
	trackers []Tracker
}

func NewRegistry(trackers ...Tracker) *Registry {
	return &Registry{trackers: append(trackers, Generic{})}
}

func (r *Registry) Get(trackingNumber, company string) Tracker {
	for _, t := range r.trackers {
		if t.CanHandle(trackingNumber, company) {
			return t
		}
	}
	return Generic{}
}

// Generic — курьер "не знаем кто": берёт любой номер, ничего не опрашивает.
type Generic struct{}

func (Generic) CanHandle(trackingNumber, company string) bool { return true }

func (Generic) Track(ctx context.Context, trackingNumber string) (Result, error) {
	return Result{Status: models.ParcelStatusPending}, nil
}
