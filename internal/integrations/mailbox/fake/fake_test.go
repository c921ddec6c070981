package fake

import (
	"context"
	"testing"

	"github.com/BearBump/ParcelBox/internal/emailparse"
	"github.com/stretchr/testify/require"
)

func TestFakeClient_Search(t *testing.T) {
	c := New()
	emails, err := c.Search(context.Background(), "ignored", 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	require.NotEmpty(t, emails[0].Subject)
}

func TestFakeClient_EmailsAreParseable(t *testing.T) {
	c := New()
	emails, err := c.Search(context.Background(), "", 0)
	require.NoError(t, err)

	total := 0
	for _, em := range emails {
		total += len(emailparse.Parse(em.Subject, em.Body))
	}
	require.GreaterOrEqual(t, total, 3)
}
