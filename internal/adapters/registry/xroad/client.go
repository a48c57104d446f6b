package xroad

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disercomi-tramites/internal/platform/httpclient"
	"disercomi-tramites/internal/ports/registry"
)

var (
	ErrNotConfigured = errors.New("xroad client not configured")
	ErrUpstream      = errors.New("xroad upstream error")
)

// Config del cliente X-Road. Token y BaseURL vienen de env
// (XROAD_URL, XROAD_TOKEN).
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client consulta RENAP (DPI) y SAT (NIT) vía el gateway X-Road.
type Client struct {
	http  *httpclient.Client
	token string
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:  hc,
		token: strings.TrimSpace(cfg.Token),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.token != ""
}

func (c *Client) ValidateDPI(ctx context.Context, dpi string) (registry.DPIResult, error) {
	if !c.IsConfigured() {
		return registry.DPIResult{}, ErrNotConfigured
	}

	var out struct {
		IsValid bool   `json:"is_valid"`
		Name    string `json:"name"`
		Status  string `json:"status"`
	}
	if err := c.http.DoJSON(ctx, "GET", "/v1/renap/dpi/"+strings.TrimSpace(dpi), c.headers(), nil, &out); err != nil {
		return registry.DPIResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return registry.DPIResult{
		IsValid: out.IsValid,
		Name:    out.Name,
		Status:  out.Status,
	}, nil
}

func (c *Client) ValidateNIT(ctx context.Context, nit string) (registry.NITResult, error) {
	if !c.IsConfigured() {
		return registry.NITResult{}, ErrNotConfigured
	}

	var out struct {
		IsValid     bool   `json:"is_valid"`
		CompanyName string `json:"company_name"`
		Status      string `json:"status"`
	}
	if err := c.http.DoJSON(ctx, "GET", "/v1/sat/nit/"+strings.TrimSpace(nit), c.headers(), nil, &out); err != nil {
		return registry.NITResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return registry.NITResult{
		IsValid:     out.IsValid,
		CompanyName: out.CompanyName,
		Status:      out.Status,
	}, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}
