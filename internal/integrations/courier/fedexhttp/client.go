package fedexhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/courier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.fedex.com"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var (
	expressShape   = regexp.MustCompile(`^[0-9]{12}$`)
	groundShape    = regexp.MustCompile(`^[0-9]{14}$`)
	smartPostShape = regexp.MustCompile(`^[0-9]{20}$`)
)

func (c *Client) CanHandle(trackingNumber, company string) bool {
	if expressShape.MatchString(trackingNumber) ||
		groundShape.MatchString(trackingNumber) ||
		smartPostShape.MatchString(trackingNumber) {
		return true
	}
	return strings.Contains(strings.ToLower(company), "fedex")
}

type fedexResp struct {
	Status                string `json:"status"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate"`
}

func (c *Client) Track(ctx context.Context, trackingNumber string) (courier.Result, error) {
	if c.apiKey == "" {
		// Без ключа API не дёргаем: посылка остаётся pending до следующего цикла.
		return courier.Result{Status: models.ParcelStatusPending}, nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return courier.Result{}, errors.Wrap(err, "parse base url")
	}
	u.Path = "/track/v1/trackingnumbers"

	q := u.Query()
	q.Set("trackingNumber", trackingNumber)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return courier.Result{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return courier.Result{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return courier.Result{}, fmt.Errorf("fedex http %d", resp.StatusCode)
	}

	var r fedexResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return courier.Result{}, errors.Wrap(err, "decode")
	}

	status := r.Status
	if status == "" {
		status = models.ParcelStatusUnknown
	}
	var eta *string
	if r.EstimatedDeliveryDate != "" {
		eta = &r.EstimatedDeliveryDate
	}
	return courier.Result{Status: status, ETA: eta}, nil
}
