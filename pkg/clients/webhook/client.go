package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client posts low-stock alerts to a configured webhook endpoint.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client targeting the given URL.
func NewClient(url string) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{
		httpClient: restyClient,
		url:        url,
	}
}

// lowStockPayload is the JSON body posted to the webhook.
type lowStockPayload struct {
	Event     string `json:"event"`
	Product   string `json:"product"`
	Remaining int    `json:"remaining"`
	Threshold int    `json:"threshold"`
}

// LowStock notifies the endpoint that a product dropped below the
// restocking threshold.
func (c *Client) LowStock(ctx context.Context, productName string, remaining, threshold int) error {
	payload := lowStockPayload{
		Event:     "low_stock",
		Product:   productName,
		Remaining: remaining,
		Threshold: threshold,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post low stock alert: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("low stock alert rejected: status %d", resp.StatusCode())
	}
	return nil
}
