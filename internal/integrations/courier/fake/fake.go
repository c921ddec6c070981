package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/courier"
	"github.com/BearBump/ParcelBox/internal/models"
)

// FakeTracker — детерминированная заглушка курьера для тестов: статус
// зависит только от номера, так что повторный опрос стабилен.
type FakeTracker struct{}

func New() *FakeTracker { return &FakeTracker{} }

func (f *FakeTracker) CanHandle(trackingNumber, company string) bool { return true }

func (f *FakeTracker) Track(ctx context.Context, trackingNumber string) (courier.Result, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	v := h.Sum32()

	// ~20% доставлено, остальное в пути.
	if v%5 == 0 {
		return courier.Result{Status: models.ParcelStatusDelivered}, nil
	}

	eta := time.Now().UTC().AddDate(0, 0, int(v%7)+1).Format("2006-01-02")
	return courier.Result{
		Status: models.ParcelStatusInTransit,
		ETA:    &eta,
	}, nil
}

// ErrTracker всегда падает: для проверки обработки сбоев курьера.
type ErrTracker struct{}

func (ErrTracker) CanHandle(trackingNumber, company string) bool { return true }

func (ErrTracker) Track(ctx context.Context, trackingNumber string) (courier.Result, error) {
	return courier.Result{}, fmt.Errorf("fake courier outage")
}
