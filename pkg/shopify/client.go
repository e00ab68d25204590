// Package shopify is a small transport for the Shopify Storefront GraphQL,
// Admin GraphQL and Admin REST APIs. It knows about endpoints, tokens and
// error envelopes, not about the storefront's domain.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultAPIVersion = "2025-01"
	defaultTimeout    = 15 * time.Second

	headerAdminToken      = "X-Shopify-Access-Token"
	headerStorefrontToken = "X-Shopify-Storefront-Access-Token"
)

// Config holds the store credentials and API versions.
type Config struct {
	StoreDomain           string
	AdminAccessToken      string
	StorefrontAccessToken string
	APIVersion            string
	StorefrontAPIVersion  string
	// BaseURL replaces https://<store>.myshopify.com when set.
	BaseURL string
	Timeout time.Duration
}

// Client talks to a single Shopify store.
type Client struct {
	baseURL           string
	adminToken        string
	storefrontToken   string
	apiVersion        string
	storefrontVersion string
	timeout           time.Duration
}

// NewClient validates the configuration and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AdminAccessToken == "" {
		return nil, errors.New("shopify admin access token is required")
	}
	if cfg.StorefrontAccessToken == "" {
		return nil, errors.New("shopify storefront access token is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		if cfg.StoreDomain == "" {
			return nil, errors.New("shopify store domain is required")
		}
		base = "https://" + storeHost(cfg.StoreDomain)
	}

	c := &Client{
		baseURL:           base,
		adminToken:        cfg.AdminAccessToken,
		storefrontToken:   cfg.StorefrontAccessToken,
		apiVersion:        cfg.APIVersion,
		storefrontVersion: cfg.StorefrontAPIVersion,
		timeout:           cfg.Timeout,
	}
	if c.apiVersion == "" {
		c.apiVersion = defaultAPIVersion
	}
	if c.storefrontVersion == "" {
		c.storefrontVersion = defaultAPIVersion
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c, nil
}

// storeHost accepts "shop", "shop.myshopify.com" or a full URL and returns
// the myshopify host name.
func storeHost(domain string) string {
	d := strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	d = strings.TrimRight(d, "/")
	d = strings.TrimSuffix(d, ".myshopify.com")
	return d + ".myshopify.com"
}

// APIError is returned for any non-2xx answer from Shopify. Body holds the
// raw response so callers can echo it.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	body := string(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("shopify %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// PhoneTaken reports whether the error is Shopify refusing a customer because
// its phone number belongs to another customer.
func (e *APIError) PhoneTaken() bool {
	var envelope struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &envelope); err != nil {
		return false
	}
	for _, msg := range errorMessages(envelope.Errors["customer"]) {
		if strings.Contains(msg, "phone") && strings.Contains(msg, "already been taken") {
			return true
		}
	}
	for _, msg := range errorMessages(envelope.Errors["customer.phone_number"]) {
		if strings.Contains(msg, "already been taken") {
			return true
		}
	}
	return false
}

func errorMessages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return nil
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLErrors is returned when a query produced errors and no data.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msgs = append(msgs, ge.Message)
	}
	return "shopify graphql: " + strings.Join(msgs, "; ")
}

// Storefront runs a query against the Storefront GraphQL API and decodes its
// "data" member into out.
func (c *Client) Storefront(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint := fmt.Sprintf("/api/%s/graphql.json", c.storefrontVersion)
	return c.graphql(ctx, endpoint, headerStorefrontToken, c.storefrontToken, query, variables, out)
}

// Admin runs a query against the Admin GraphQL API.
func (c *Client) Admin(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint := fmt.Sprintf("/admin/api/%s/graphql.json", c.apiVersion)
	return c.graphql(ctx, endpoint, headerAdminToken, c.adminToken, query, variables, out)
}

func (c *Client) graphql(ctx context.Context, endpoint, tokenHeader, token, query string, variables map[string]any, out any) error {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}

	code, body, err := c.do(ctx, fiber.MethodPost, endpoint, tokenHeader, token, payload)
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 {
		return &APIError{Method: fiber.MethodPost, Path: endpoint, StatusCode: code, Body: body}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors GraphQLErrors   `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if len(envelope.Errors) > 0 {
			return envelope.Errors
		}
		return errors.New("shopify graphql: empty data")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

// REST calls the Admin REST API. path is relative to /admin/api/<version>/,
// e.g. "variants/123.json".
func (c *Client) REST(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	endpoint := fmt.Sprintf("/admin/api/%s/%s", c.apiVersion, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	code, body, err := c.do(ctx, method, endpoint, headerAdminToken, c.adminToken, payload)
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 {
		return &APIError{Method: method, Path: endpoint, StatusCode: code, Body: body}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ShopName runs the cheapest authenticated Admin query there is. It backs
// the health check.
func (c *Client) ShopName(ctx context.Context) (string, error) {
	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := c.Admin(ctx, `query { shop { name id } }`, nil, &data); err != nil {
		return "", err
	}
	return data.Shop.Name, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, tokenHeader, token string, payload any) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + endpoint)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, nil, fmt.Errorf("prepare %s %s: %w", method, endpoint, err)
	}

	a.Timeout(c.timeoutFor(ctx))
	a.Set(tokenHeader, token)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			fiber.ReleaseAgent(a)
			return 0, nil, fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(b)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return code, body, fmt.Errorf("%s %s: %w", method, endpoint, errors.Join(errs...))
	}
	return code, body, nil
}

// timeoutFor honours the context deadline when it is tighter than the
// client timeout. fasthttp has no context support of its own.
func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout < time.Millisecond {
		timeout = time.Millisecond
	}
	return timeout
}
