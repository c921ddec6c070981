package fake

import (
	"context"

	"github.com/BearBump/ParcelBox/internal/integrations/mailbox"
)

// FakeClient — локальная заглушка почты для запуска без Gmail-токена.
// Отдаёт фиксированную пачку писем о доставке, чтобы прогнать весь конвейер.
type FakeClient struct{}

func New() *FakeClient { return &FakeClient{} }

var cannedEmails = []mailbox.Email{
	{
		ID:      "demo-1",
		Subject: "Your Amazon order has shipped",
		Body:    "Hello! Your package is on its way. Tracking number: 1Z999AA10123456784",
	},
	{
		ID:      "demo-2",
		Subject: "FedEx shipment notification",
		Body:    "Your shipment 123456789012 is out for delivery.",
	},
	{
		ID:      "demo-3",
		Subject: "USPS expected delivery",
		Body:    "Item LX123456789US was accepted at the post office.",
	},
}

func (f *FakeClient) Search(ctx context.Context, query string, maxResults int) ([]mailbox.Email, error) {
	if maxResults <= 0 || maxResults > len(cannedEmails) {
		maxResults = len(cannedEmails)
	}
	out := make([]mailbox.Email, maxResults)
	copy(out, cannedEmails[:maxResults])
	return out, nil
}
