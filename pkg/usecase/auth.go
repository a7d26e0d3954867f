package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"golang.org/x/oauth2"
)

const (
	// GitHub Device Flow endpoints
	defaultDeviceCodeURL = "https://github.com/login/device/code"
	defaultTokenURL      = "https://github.com/login/oauth/access_token" // #nosec G101 - This is not a credential, it's a public API endpoint

	// DefaultClientID is the OAuth app used for the device flow.
	DefaultClientID = "Ov23litxvfoH9DYHtwKP"

	defaultPollInterval = 5 * time.Second
)

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

type AuthService struct {
	storage       *TokenStorage
	clientID      string
	token         string
	deviceCodeURL string
	tokenURL      string
	httpClient    *http.Client
	prompt        io.Writer
}

type AuthOption func(*AuthService)

// WithTokenStorage replaces the storage under ~/.config/octastat
func WithTokenStorage(storage *TokenStorage) AuthOption {
	return func(s *AuthService) {
		s.storage = storage
	}
}

// WithDeviceFlowEndpoints points the device flow at other endpoints, e.g. a
// GitHub Enterprise server.
func WithDeviceFlowEndpoints(deviceCodeURL, tokenURL string) AuthOption {
	return func(s *AuthService) {
		s.deviceCodeURL = deviceCodeURL
		s.tokenURL = tokenURL
	}
}

// WithPromptWriter sets where the device flow instructions are printed
func WithPromptWriter(w io.Writer) AuthOption {
	return func(s *AuthService) {
		s.prompt = w
	}
}

// NewAuthService creates an AuthService. A non-empty token is used as is and
// neither the stored token nor the device flow is consulted.
func NewAuthService(clientID, token string, opts ...AuthOption) interfaces.AuthService {
	if clientID == "" {
		clientID = DefaultClientID
	}

	s := &AuthService{
		storage:       NewTokenStorage(),
		clientID:      clientID,
		token:         token,
		deviceCodeURL: defaultDeviceCodeURL,
		tokenURL:      defaultTokenURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		// stdout is reserved for the report summary
		prompt: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) GetToken(ctx context.Context) (string, error) {
	if s.token != "" {
		return s.token, nil
	}
	return s.storage.GetToken(ctx)
}

func (s *AuthService) SaveToken(ctx context.Context, token string) error {
	return s.storage.SaveToken(ctx, token)
}

// DeviceFlow asks the user to authorize the app in a browser, waits for the
// grant and stores the issued token.
func (s *AuthService) DeviceFlow(ctx context.Context) (string, error) {
	deviceCode, err := s.requestDeviceCode(ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(s.prompt, "\n🔐 GitHub Device Flow Authentication\n")
	fmt.Fprintf(s.prompt, "────────────────────────────────────\n")
	fmt.Fprintf(s.prompt, "1. Copy this code: %s\n", deviceCode.UserCode)
	fmt.Fprintf(s.prompt, "2. Visit: %s\n", deviceCode.VerificationURI)
	fmt.Fprintf(s.prompt, "3. Paste the code and authorize the app\n\n")
	fmt.Fprintf(s.prompt, "⏳ Waiting for authorization...\n")

	token, err := s.pollForToken(ctx, deviceCode)
	if err != nil {
		return "", err
	}

	if err := s.SaveToken(ctx, token); err != nil {
		return "", err
	}

	fmt.Fprintf(s.prompt, "✅ Authentication successful!\n\n")
	return token, nil
}

// GetAuthenticatedClient returns a go-github client whose requests carry the
// token and are logged at debug level.
func (s *AuthService) GetAuthenticatedClient(ctx context.Context) (*github.Client, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	if token == "" {
		ctxlog.From(ctx).Debug("No saved token found, starting authentication")
		token, err = s.DeviceFlow(ctx)
		if err != nil {
			return nil, err
		}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Transport = NewLoggingTransport(tc.Transport)
	return github.NewClient(tc), nil
}

func (s *AuthService) requestDeviceCode(ctx context.Context) (*deviceCodeResponse, error) {
	form := url.Values{
		"client_id": {s.clientID},
		"scope":     {"repo"},
	}

	var deviceCode deviceCodeResponse
	if err := s.postForm(ctx, s.deviceCodeURL, form, &deviceCode); err != nil {
		return nil, domain.ErrAuthentication.Wrap(err)
	}

	if deviceCode.DeviceCode == "" {
		return nil, goerr.Wrap(domain.ErrAuthentication, "failed to get device code - check your Client ID", goerr.V("client_id", s.clientID))
	}
	return &deviceCode, nil
}

func (s *AuthService) pollForToken(ctx context.Context, deviceCode *deviceCodeResponse) (string, error) {
	logger := ctxlog.From(ctx)

	interval := time.Duration(deviceCode.Interval) * time.Second
	if interval == 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(time.Duration(deviceCode.ExpiresIn) * time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	form := url.Values{
		"client_id":   {s.clientID},
		"device_code": {deviceCode.DeviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}

	for {
		select {
		case <-ctx.Done():
			return "", domain.ErrAuthentication.Wrap(ctx.Err())
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return "", goerr.Wrap(domain.ErrAuthentication, "device code expired")
		}

		var tokenResp tokenResponse
		if err := s.postForm(ctx, s.tokenURL, form, &tokenResp); err != nil {
			logger.Debug("error polling for token", slog.String("error", err.Error()))
			continue
		}

		switch tokenResp.Error {
		case "":
			if tokenResp.AccessToken != "" {
				return tokenResp.AccessToken, nil
			}
		case "authorization_pending":
		case "slow_down":
			interval += 5 * time.Second
			ticker.Reset(interval)
		default:
			return "", goerr.Wrap(domain.ErrAuthentication, "device flow failed",
				goerr.V("error", tokenResp.Error),
				goerr.V("description", tokenResp.ErrorDesc),
			)
		}
	}
}

func (s *AuthService) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("url", endpoint))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request", goerr.V("url", endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read response", goerr.V("url", endpoint))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(err, "failed to parse response",
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
		)
	}
	return nil
}
