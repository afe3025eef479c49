package londonhydro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jgoulah/hydromon/pkg/models"
)

const (
	applicationCode = "MY"
	applicationURL  = "https://www2.londonhydro.com/site/myaccount/"
	clientID        = "LondonHydroApp"
)

// AuthError represents an authentication failure
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// FetchError represents a non-success response from the export endpoint
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("usage export returned status %d: %s", e.StatusCode, e.Body)
}

// Token is the bearer token pair returned by login
type Token struct {
	Type  string
	Value string
}

// Header renders the token as an Authorization header value
func (t Token) Header() string {
	return t.Type + " " + t.Value
}

// Client talks to the London Hydro account API
type Client struct {
	http     *http.Client
	loginURL string
	usageURL string
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewClient creates a client for the given login and green button endpoints
func NewClient(loginURL, usageURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	return &Client{
		http:     &http.Client{Timeout: timeout},
		loginURL: loginURL,
		usageURL: strings.TrimRight(usageURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

// Login exchanges a username and password for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("applicationCode", applicationCode)
	form.Set("applicationUrl", applicationURL)
	form.Set("client_id", clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Debugw("logging in", "url", c.loginURL, "username", username)

	resp, err := c.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("reading login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unable to login (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	var loginResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unable to parse login response: %v", err),
		}
	}
	if loginResp.AccessToken == "" || loginResp.TokenType == "" {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "login response is missing access_token or token_type",
		}
	}

	token := Token{Type: loginResp.TokenType, Value: loginResp.AccessToken}
	c.log.Debugw("login successful", "token_type", token.Type)
	return token, nil
}

// FetchUsage downloads the green button CSV export for an electrical account
func (c *Client) FetchUsage(ctx context.Context, account string, token Token, window models.Window) ([]byte, error) {
	params := url.Values{}
	params.Set("startDate", strconv.FormatInt(window.Start.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(window.End.UnixMilli(), 10))
	params.Set("greenButton", "true")
	params.Set("fmt", "text/csv")
	params.Set("ck", strconv.FormatInt(c.now().UnixMilli(), 10))

	reqURL := fmt.Sprintf("%s/E%s/downloadData?%s", c.usageURL, url.PathEscape(account), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating usage request: %w", err)
	}
	req.Header.Set("Authorization", token.Header())
	req.Header.Set("Accept", "text/csv")

	c.log.Debugw("requesting usage export", "account", account, "start", window.Start, "end", window.End)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usage request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading usage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.log.Debugw("usage export received", "bytes", len(body), "content_type", resp.Header.Get("Content-Type"))
	return body, nil
}
