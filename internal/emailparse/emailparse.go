package emailparse

import (
	"regexp"
	"strings"

	"github.com/BearBump/ParcelBox/internal/models"
)

// Шаблоны трек-номеров. Порядок фиксирован: кандидаты возвращаются
// по шаблонам, внутри шаблона — по позиции в тексте.
var trackingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b1Z[0-9A-Z]{16}\b`),           // UPS
	regexp.MustCompile(`(?i)\b[0-9]{12}\b`),                // FedEx Express
	regexp.MustCompile(`(?i)\b[0-9]{14}\b`),                // FedEx Ground
	regexp.MustCompile(`(?i)\b[0-9]{20,22}\b`),             // USPS / long numeric
	regexp.MustCompile(`(?i)\b[A-Z]{2}[0-9]{9}[A-Z]{2}\b`), // USPS international
}

// Компании в порядке приоритета: первое совпадение выигрывает.
var companyPatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"amazon", regexp.MustCompile(`amazon|amzn`)},
	{"ups", regexp.MustCompile(`ups|united parcel`)},
	{"fedex", regexp.MustCompile(`fedex|federal express`)},
	{"usps", regexp.MustCompile(`usps|united states postal|post office`)},
	{"dhl", regexp.MustCompile(`dhl`)},
	{"shopify", regexp.MustCompile(`shopify`)},
	{"ebay", regexp.MustCompile(`ebay`)},
}

// Формы номеров для классификации курьера. Тут регистр значим:
// "1z..." в нижнем регистре не считается номером UPS.
var (
	upsShape          = regexp.MustCompile(`^1Z[0-9A-Z]{16}$`)
	fedexExpressShape = regexp.MustCompile(`^[0-9]{12}$`)
	fedexGroundShape  = regexp.MustCompile(`^[0-9]{14}$`)
)

// TrackingNumbers извлекает все похожие на трек-номер подстроки из тела письма.
// Дубликаты не схлопываются: этим занимается хранилище при вставке.
func TrackingNumbers(body string) []string {
	if body == "" {
		return nil
	}
	var out []string
	for _, re := range trackingPatterns {
		out = append(out, re.FindAllString(body, -1)...)
	}
	return out
}

// DetectCompany возвращает company-метку по содержимому письма (subject + body).
func DetectCompany(content string) string {
	lowered := strings.ToLower(content)
	for _, cp := range companyPatterns {
		if cp.re.MatchString(lowered) {
			return cp.tag
		}
	}
	return models.CompanyUnknown
}

// DetectCourier определяет курьера: форма номера важнее текста про компанию.
func DetectCourier(trackingNumber, company string) string {
	switch {
	case upsShape.MatchString(trackingNumber):
		return models.CourierUPS
	case fedexExpressShape.MatchString(trackingNumber), fedexGroundShape.MatchString(trackingNumber):
		return models.CourierFedEx
	case company == "ups":
		return models.CourierUPS
	case company == "fedex":
		return models.CourierFedEx
	}
	return models.CourierUnknown
}

type Candidate struct {
	TrackingNumber string
	Courier        string
	Company        string
}

// Parse разбирает одно письмо в список кандидатов. Письмо без номеров — пустой
// список, а не ошибка.
func Parse(subject, body string) []Candidate {
	company := DetectCompany(subject + " " + body)

	numbers := TrackingNumbers(body)
	if len(numbers) == 0 {
		return nil
	}

	out := make([]Candidate, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, Candidate{
			TrackingNumber: n,
			Courier:        DetectCourier(n, company),
			Company:        company,
		})
	}
	return out
}
