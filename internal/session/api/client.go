package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"carddemo/internal/session/models"
	"carddemo/pkg/apierrors"
)

// Transport is the session core's view of the auth backend. The manager and
// monitor depend on this interface, never on the concrete HTTP client.
type Transport interface {
	Login(ctx context.Context, userID, password string) (*models.LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Validate(ctx context.Context, accessToken string) (*ValidateResult, error)
}

// ValidateResult is the backend's verdict on an access token.
type ValidateResult struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
}

// Client is the HTTP implementation of Transport. Requests carry no client
// timeout of their own; the caller's context is the only deadline.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client against the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	UserType     string `json:"userType"`
	ExpiresIn    int64  `json:"expiresIn"`
	Message      string `json:"message"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// Login exchanges credentials for tokens. A 401 maps to the single generic
// credentials class regardless of which half was wrong; a 400 maps to
// bad-request; transport failures map to the network class.
func (c *Client) Login(ctx context.Context, userID, password string) (*models.LoginResult, error) {
	status, body, err := c.post(ctx, "/auth/login", loginRequest{UserID: userID, Password: password}, "")
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeNetwork, "unable to verify credentials, check your connection", err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, apierrors.New(apierrors.CodeCredentials, "invalid credentials")
	case status == http.StatusBadRequest:
		return nil, apierrors.New(apierrors.CodeBadRequest, "check your input")
	case status < 200 || status > 299:
		return nil, apierrors.New(apierrors.CodeInternal, fmt.Sprintf("login failed with status %d", status))
	}

	var res loginResponse
	if err := decodeEnvelope(body, &res); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "malformed login response", err)
	}
	return &models.LoginResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
		UserID:       res.UserID,
		FullName:     res.FullName,
		UserType:     res.UserType,
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

// Logout notifies the backend. Callers treat any failure as best-effort.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	status, _, err := c.post(ctx, "/auth/logout", struct{}{}, accessToken)
	if err != nil {
		return apierrors.Wrap(apierrors.CodeNetwork, "logout notification failed", err)
	}
	if status < 200 || status > 299 {
		return apierrors.New(apierrors.CodeToken, fmt.Sprintf("logout rejected with status %d", status))
	}
	return nil
}

// Refresh exchanges the refresh token for a new access token. Any non-2xx
// answer is a token failure; the caller's failure path forces logout.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	status, body, err := c.post(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return "", apierrors.Wrap(apierrors.CodeNetwork, "refresh request failed", err)
	}
	if status < 200 || status > 299 {
		return "", apierrors.New(apierrors.CodeToken, fmt.Sprintf("refresh rejected with status %d", status))
	}
	var res refreshResponse
	if err := decodeEnvelope(body, &res); err != nil {
		return "", apierrors.Wrap(apierrors.CodeToken, "malformed refresh response", err)
	}
	if res.AccessToken == "" {
		return "", apierrors.New(apierrors.CodeToken, "refresh response missing access token")
	}
	return res.AccessToken, nil
}

// Validate asks the backend for a verdict on the token. Non-2xx answers are
// reported as an invalid verdict rather than an error; only transport
// failures surface as errors.
func (c *Client) Validate(ctx context.Context, accessToken string) (*ValidateResult, error) {
	status, body, err := c.post(ctx, "/auth/validate", validateRequest{Token: accessToken}, accessToken)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeNetwork, "validate request failed", err)
	}
	if status < 200 || status > 299 {
		return &ValidateResult{Valid: false}, nil
	}
	var res ValidateResult
	if err := decodeEnvelope(body, &res); err != nil {
		return &ValidateResult{Valid: false}, nil
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, bearer string) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// envelope is the optional wrapper shape some backend builds emit. The core
// accepts both the wrapper and a raw payload and normalizes to the payload.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(body []byte, target any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			if env.Error != "" {
				return fmt.Errorf("backend error: %s", env.Error)
			}
			return fmt.Errorf("backend reported failure")
		}
		return json.Unmarshal(env.Data, target)
	}
	return json.Unmarshal(body, target)
}
