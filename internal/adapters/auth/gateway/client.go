package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disercomi-tramites/internal/platform/httpclient"
	"disercomi-tramites/internal/ports/auth"
)

var (
	ErrGatewayNotConfigured = errors.New("gateway client not configured")
	ErrGatewayUnauthorized  = errors.New("gateway unauthorized")
	ErrGatewayUpstream      = errors.New("gateway upstream error")
)

// Config del cliente del gateway de interoperabilidad. BaseURL y APIKey
// normalmente vienen de env vars (GATEWAY_URL, GATEWAY_API_KEY).
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	http   *httpclient.Client
	apiKey string
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:   hc,
		apiKey: strings.TrimSpace(cfg.APIKey),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifyToken llama al gateway para verificar un token y traer claims.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrGatewayNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrGatewayUnauthorized
	}

	var out struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}

	err := c.http.DoJSON(ctx, "POST", "/v1/tokens/verify",
		map[string]string{
			"X-Api-Key":     c.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var herr *httpclient.HTTPError
		if errors.As(err, &herr) && (herr.StatusCode == 401 || herr.StatusCode == 403) {
			return auth.Claims{}, ErrGatewayUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrGatewayUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("gateway response missing user_id")
	}

	return auth.Claims{
		UserID: out.UserID,
		Name:   strings.TrimSpace(out.Name),
		Email:  strings.TrimSpace(out.Email),
		Role:   strings.TrimSpace(out.Role),
	}, nil
}
