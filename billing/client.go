package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client invokes the hosted billing functions (create-checkout,
// check-subscription, customer-portal) by name over HTTP.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("billing base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid billing base URL: %w", err)
	}
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CheckoutSession is returned by create-checkout; the caller redirects the
// browser to URL.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SubscriptionState is the billing backend's view of a factory.
type SubscriptionState struct {
	Subscribed bool   `json:"subscribed"`
	Tier       string `json:"tier"`
	Status     string `json:"status"`
	PeriodEnd  string `json:"periodEnd"`
}

// PortalSession is returned by customer-portal.
type PortalSession struct {
	URL string `json:"url"`
}

func (c *Client) invoke(ctx context.Context, name string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+name, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", name, err)
		}
	}
	return nil
}

func (c *Client) CreateCheckout(ctx context.Context, factoryID, tier string) (*CheckoutSession, error) {
	var session CheckoutSession
	payload := map[string]string{"factoryId": factoryID, "tier": NormalizeTier(tier)}
	if err := c.invoke(ctx, "create-checkout", payload, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("create-checkout returned no session URL")
	}
	return &session, nil
}

func (c *Client) CheckSubscription(ctx context.Context, factoryID string) (*SubscriptionState, error) {
	var state SubscriptionState
	payload := map[string]string{"factoryId": factoryID}
	if err := c.invoke(ctx, "check-subscription", payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) CustomerPortal(ctx context.Context, factoryID string) (*PortalSession, error) {
	var session PortalSession
	payload := map[string]string{"factoryId": factoryID}
	if err := c.invoke(ctx, "customer-portal", payload, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("customer-portal returned no URL")
	}
	return &session, nil
}
