// Package client talks to the series notification API on behalf of an operator.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"oseplatform/models"

	"go.uber.org/zap"
)

// Client is the API client. It is safe for concurrent use.
type Client struct {
	baseURL   string
	transport *transport
	session   *Session
	logger    *zap.Logger
}

// New returns a client for cfg.BaseURL.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.setDefaults()
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		transport: newTransport(cfg),
		session:   &Session{},
		logger:    logger,
	}, nil
}

// Session returns the operator session shared by every call.
func (c *Client) Session() *Session { return c.session }

// call performs one request and decodes a 2xx JSON answer into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any, retry bool) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = b
	}

	build := jsonRequest(method, c.baseURL+path, body)
	token := c.session.Token()
	resp, err := c.transport.do(ctx, retry, func(ctx context.Context) (*http.Request, error) {
		req, err := build(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, err
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		c.logger.Debug("api call failed", zap.String("path", path), zap.Error(apiErr))
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Login opens the operator session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.call(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	c.session.set(&resp)
	c.logger.Info("logged in", zap.String("operator", resp.Operator.Email))
	return &resp, nil
}

// Logout revokes the token server-side and clears the session even when revocation fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.clear()
	if c.session.Token() == "" {
		return nil
	}
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, false)
}

// ValidateBulk checks identifiers against the inventory.
func (c *Client) ValidateBulk(ctx context.Context, series []string) (*models.BulkValidationResult, error) {
	var wire models.BulkValidateWire
	if err := c.call(ctx, http.MethodPost, "/series-notifications/validate-bulk", models.BulkValidateRequest{Series: series}, &wire, true); err != nil {
		return nil, err
	}
	result := adaptBulkValidation(wire)
	return &result, nil
}

// SmartScan expands a scanned code of unknown kind.
func (c *Client) SmartScan(ctx context.Context, code string) (*models.ScanResult, error) {
	var res models.ScanResult
	path := "/series-notifications/search/smart-scan?code=" + url.QueryEscape(code)
	if err := c.call(ctx, http.MethodPost, path, nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

var searchPaths = map[string]string{
	models.ScanTypeLot:    "/series-notifications/search/by-location/",
	models.ScanTypeCarton: "/series-notifications/search/by-carton/",
	models.ScanTypePallet: "/series-notifications/search/by-pallet/",
}

// SearchBy expands a code of known kind: models.ScanTypeLot, ScanTypeCarton or ScanTypePallet.
func (c *Client) SearchBy(ctx context.Context, scanType, value string) (*models.ScanResult, error) {
	prefix, ok := searchPaths[scanType]
	if !ok {
		return nil, fmt.Errorf("client: unsupported search type %q", scanType)
	}
	var res models.ScanResult
	if err := c.call(ctx, http.MethodGet, prefix+url.PathEscape(value), nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ConfigOptions(ctx context.Context) (*models.ConfigOptions, error) {
	var opts models.ConfigOptions
	if err := c.call(ctx, http.MethodGet, "/series-notifications/config/options", nil, &opts, true); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Send dispatches a batch. It is never retried.
func (c *Client) Send(ctx context.Context, req models.SeriesNotificationRequest) (*models.SeriesNotificationResponse, error) {
	var resp models.SeriesNotificationResponse
	if err := c.call(ctx, http.MethodPost, "/series-notifications/send", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) History(ctx context.Context, filter models.HistoryFilter, page, limit int) (*models.HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filter.Email != "" {
		q.Set("search_email", filter.Email)
	}
	if filter.Customer != "" {
		q.Set("search_customer", filter.Customer)
	}
	if filter.Location != "" {
		q.Set("search_location", filter.Location)
	}

	var p models.HistoryPage
	if err := c.call(ctx, http.MethodGet, "/series-notifications/history?"+q.Encode(), nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) HistoryItem(ctx context.Context, id string) (*models.NotificationHistoryItem, error) {
	var item models.NotificationHistoryItem
	if err := c.call(ctx, http.MethodGet, "/series-notifications/history/"+url.PathEscape(id), nil, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}
