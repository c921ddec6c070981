package gmailhttp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/mailbox"
	"github.com/pkg/errors"
)

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://gmail.googleapis.com"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type listResp struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageResp struct {
	ID      string  `json:"id"`
	Payload payload `json:"payload"`
}

type payload struct {
	MimeType string `json:"mimeType"`
	Headers  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []payload `json:"parts"`
}

// Search возвращает письма по запросу. Письма, которые не удалось скачать
// или разобрать, пропускаются: лучше обработать часть пачки, чем ни одного.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]mailbox.Email, error) {
	ids, err := c.listIDs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	out := make([]mailbox.Email, 0, len(ids))
	for _, id := range ids {
		msg, err := c.getMessage(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out = append(out, mailbox.Email{
			ID:      msg.ID,
			Subject: msg.header("Subject"),
			Body:    msg.plainText(),
		})
	}
	return out, nil
}

func (c *Client) listIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = "/gmail/v1/users/me/messages"

	q := u.Query()
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	var r listResp
	if err := c.getJSON(ctx, u.String(), &r); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *Client) getMessage(ctx context.Context, id string) (*messageResp, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = "/gmail/v1/users/me/messages/" + id

	q := u.Query()
	q.Set("format", "full")
	u.RawQuery = q.Encode()

	var msg messageResp
	if err := c.getJSON(ctx, u.String(), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("gmail http %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

func (m *messageResp) header(name string) string {
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// plainText достаёт текст письма: первый text/plain среди частей верхнего
// уровня, иначе тело самого сообщения. Вложенные multipart не разворачиваются.
func (m *messageResp) plainText() string {
	for _, p := range m.Payload.Parts {
		if p.MimeType == "text/plain" && p.Body.Data != "" {
			return decodeBody(p.Body.Data)
		}
	}
	if m.Payload.MimeType == "text/plain" && m.Payload.Body.Data != "" {
		return decodeBody(m.Payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	// Gmail отдаёт base64url, padding не гарантирован.
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(b)
}
