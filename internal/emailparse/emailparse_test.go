package emailparse

import (
	"testing"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTrackingNumbers_Shapes(t *testing.T) {
	body := "UPS: 1Z999AA10123456784, FedEx: 123456789012 and 12345678901234, " +
		"USPS: 94001234567890123456 or LX123456789US."
	got := TrackingNumbers(body)
	require.Contains(t, got, "1Z999AA10123456784")
	require.Contains(t, got, "123456789012")
	require.Contains(t, got, "12345678901234")
	require.Contains(t, got, "94001234567890123456")
	require.Contains(t, got, "LX123456789US")
}

func TestTrackingNumbers_CaseInsensitive(t *testing.T) {
	got := TrackingNumbers("your package 1z999aa10123456784 has shipped")
	require.Equal(t, []string{"1z999aa10123456784"}, got)
}

func TestTrackingNumbers_Empty(t *testing.T) {
	require.Empty(t, TrackingNumbers(""))
	require.Empty(t, TrackingNumbers("no numbers here"))
}

func TestTrackingNumbers_KeepsDuplicates(t *testing.T) {
	// Один и тот же номер дважды в тексте: оба вхождения сохраняются,
	// дедупликация — забота хранилища.
	got := TrackingNumbers("123456789012 again 123456789012")
	require.Len(t, got, 2)
}

func TestDetectCompany_FirstMatchWins(t *testing.T) {
	// И amazon, и ups в тексте: amazon раньше в списке.
	require.Equal(t, "amazon", DetectCompany("Your Amazon order shipped via UPS"))
	require.Equal(t, "ups", DetectCompany("United Parcel Service delivery notice"))
	require.Equal(t, "fedex", DetectCompany("FEDERAL EXPRESS shipment"))
	require.Equal(t, "usps", DetectCompany("visit your local post office"))
	require.Equal(t, "dhl", DetectCompany("DHL Express"))
	require.Equal(t, models.CompanyUnknown, DetectCompany("hello world"))
}

func TestDetectCourier_ShapeBeatsCompany(t *testing.T) {
	require.Equal(t, models.CourierUPS, DetectCourier("1Z999AA10123456784", "amazon"))
	require.Equal(t, models.CourierFedEx, DetectCourier("123456789012", "amazon"))
	require.Equal(t, models.CourierFedEx, DetectCourier("12345678901234", "ups"))
}

func TestDetectCourier_CompanyFallback(t *testing.T) {
	require.Equal(t, models.CourierUPS, DetectCourier("LX123456789US", "ups"))
	require.Equal(t, models.CourierFedEx, DetectCourier("94001234567890123456", "fedex"))
	require.Equal(t, models.CourierUnknown, DetectCourier("LX123456789US", "usps"))
	require.Equal(t, models.CourierUnknown, DetectCourier("junk", models.CompanyUnknown))
}

func TestDetectCourier_ShapeIsCaseSensitive(t *testing.T) {
	// Номер в нижнем регистре не проходит проверку формы, остаётся только company.
	require.Equal(t, models.CourierUnknown, DetectCourier("1z999aa10123456784", "amazon"))
	require.Equal(t, models.CourierUPS, DetectCourier("1z999aa10123456784", "ups"))
}

func TestParse(t *testing.T) {
	cands := Parse("Your Amazon order has shipped", "Track it: 1Z999AA10123456784")
	require.Len(t, cands, 1)
	require.Equal(t, "1Z999AA10123456784", cands[0].TrackingNumber)
	require.Equal(t, models.CourierUPS, cands[0].Courier)
	require.Equal(t, "amazon", cands[0].Company)
}

func TestParse_NoNumbers(t *testing.T) {
	require.Empty(t, Parse("Your order", "thanks for shopping"))
}

func TestParse_SubjectContributesCompanyOnly(t *testing.T) {
	// Номер в subject не извлекается, но subject участвует в определении company.
	cands := Parse("FedEx shipment 999", "code 123456789012")
	require.Len(t, cands, 1)
	require.Equal(t, "fedex", cands[0].Company)
}
