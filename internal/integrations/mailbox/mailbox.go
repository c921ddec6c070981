package mailbox

import "context"

// Email — письмо в том виде, который нужен движку: заголовок и плоский текст.
type Email struct {
	ID      string
	Subject string
	Body    string
}

type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Email, error)
}

// DefaultSearchQuery — поисковый запрос по умолчанию для писем о доставке.
const DefaultSearchQuery = `subject:(shipped OR tracking OR delivery OR "on its way" OR "out for delivery") OR from:(amazon.com OR ups.com OR fedex.com OR usps.com OR dhl.com)`
