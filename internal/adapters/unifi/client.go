package unifi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// ErrUnauthorized is returned when the controller rejects the credentials.
var ErrUnauthorized = errors.New("controller rejected credentials")

// Config holds the controller connection settings.
type Config struct {
	URL         string
	Site        string
	Username    string
	Password    string
	UnifiOS     bool // UniFi OS consoles (UDM, UCG, Cloud Key Gen2+)
	InsecureTLS bool
	Timeout     time.Duration
}

// RequestError reports a non-2xx controller response.
type RequestError struct {
	Op     string
	Status int
	Msg    string
}

func (e *RequestError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s failed: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Msg)
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// Client reads devices, clients and networks from a UniFi Network controller.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger

	mu        sync.Mutex
	loggedIn  bool
	csrfToken string
}

var _ ports.InventorySource = (*Client)(nil)

// NewClient creates a client. The session cookie is kept in the client's jar.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("controller url is required")
	}
	if cfg.Site == "" {
		cfg.Site = "default"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		// Consoles ship with self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		cfg:    cfg,
		logger: logger.With("component", "unifi", "site", cfg.Site),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
		},
	}, nil
}

// ListDevices returns the adopted infrastructure devices.
func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	raw, err := fetch[rawDevice](ctx, c, "stat/device")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Device, 0, len(raw))
	for _, r := range raw {
		if r.MAC == "" {
			continue
		}
		out = append(out, toDomainDevice(r))
	}
	return out, nil
}

// ListClients returns the currently connected clients.
func (c *Client) ListClients(ctx context.Context) ([]domain.Client, error) {
	raw, err := fetch[rawClient](ctx, c, "stat/sta")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(raw))
	for _, r := range raw {
		if r.MAC == "" {
			continue
		}
		out = append(out, toDomainClient(r))
	}
	return out, nil
}

// ListNetworks returns the configured networks.
func (c *Client) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	raw, err := fetch[rawNetwork](ctx, c, "rest/networkconf")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Network, 0, len(raw))
	for _, r := range raw {
		// WAN and VPN entries carry no LAN subnet.
		if r.Purpose == "wan" || r.IPSubnet == "" {
			continue
		}
		out = append(out, toDomainNetwork(r))
	}
	return out, nil
}

func (c *Client) apiPath(collection string) string {
	p := "/api/s/" + c.cfg.Site + "/" + collection
	if c.cfg.UnifiOS {
		return "/proxy/network" + p
	}
	return p
}

func (c *Client) loginPath() string {
	if c.cfg.UnifiOS {
		return "/api/auth/login"
	}
	return "/api/login"
}

// fetch reads one collection, logging in first and once more after a 401.
func fetch[T any](ctx context.Context, c *Client, collection string) ([]T, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	var env envelope[T]
	err := c.getJSON(ctx, c.apiPath(collection), &env)
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Status == http.StatusUnauthorized {
		c.logger.Debug("Session expired, logging in again", "collection", collection)
		c.invalidate()
		if err := c.ensureLogin(ctx); err != nil {
			return nil, err
		}
		env = envelope[T]{}
		err = c.getJSON(ctx, c.apiPath(collection), &env)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}
	if env.Meta.RC != "" && env.Meta.RC != "ok" {
		return nil, fmt.Errorf("%s: controller returned %q: %s", collection, env.Meta.RC, env.Meta.Msg)
	}
	return env.Data, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.loggedIn = false
	c.mu.Unlock()
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}

	body := map[string]any{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
		"remember": true,
	}
	token, err := c.postJSON(ctx, c.loginPath(), body)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && (reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden) {
			return fmt.Errorf("login: %w", ErrUnauthorized)
		}
		return fmt.Errorf("login: %w", err)
	}
	c.csrfToken = token
	c.loggedIn = true
	c.logger.Debug("Logged in to controller", "unifi_os", c.cfg.UnifiOS)
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if err := checkStatus("POST "+path, res); err != nil {
		return "", err
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Header.Get("X-CSRF-Token"), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.mu.Lock()
	if c.csrfToken != "" {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}
	c.mu.Unlock()

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := checkStatus("GET "+path, res); err != nil {
		return err
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func checkStatus(op string, res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &RequestError{Op: op, Status: res.StatusCode, Msg: strings.TrimSpace(string(body))}
}
