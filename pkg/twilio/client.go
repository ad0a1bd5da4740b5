package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
)

const (
	apiVersion         = "2010-04-01"
	DefaultAPIBaseURL  = "https://api.twilio.com"
	DefaultFromNumber  = "+1234567890"
	defaultHTTPTimeout = 10 * time.Second
)

// ErrNotConfigured is returned when credentials are missing or skipped.
var ErrNotConfigured = errors.New("twilio: client not available")

// Config configures the REST client.
type Config struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
	Skip        bool
	HTTPClient  *http.Client
}

// Client is a minimal Twilio REST client for outbound calls.
type Client struct {
	accountSID  string
	authToken   string
	phoneNumber string
	baseURL     string
	httpClient  *http.Client
}

// Call represents a Twilio call resource.
type Call struct {
	SID         string `json:"sid"`
	AccountSID  string `json:"account_sid"`
	To          string `json:"to"`
	From        string `json:"from"`
	Status      string `json:"status"`
	Direction   string `json:"direction"`
	Duration    string `json:"duration"`
	DateCreated string `json:"date_created"`
}

// APIError is the Twilio error envelope.
type APIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// NewClient returns ErrNotConfigured unless the account sid starts with "AC",
// a token is set and Skip is false.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Skip || cfg.AuthToken == "" || !strings.HasPrefix(cfg.AccountSID, "AC") {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	if cfg.PhoneNumber == "" {
		cfg.PhoneNumber = DefaultFromNumber
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		accountSID:  cfg.AccountSID,
		authToken:   cfg.AuthToken,
		phoneNumber: cfg.PhoneNumber,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  cfg.HTTPClient,
	}, nil
}

// Available reports whether c can place calls. A nil client is unavailable.
func (c *Client) Available() bool {
	return c != nil
}

func (c *Client) builder(path string, args ...any) (*requests.Builder, *APIError) {
	apiErr := &APIError{}
	b := requests.
		URL(c.baseURL).
		Pathf("/"+apiVersion+"/Accounts/%s"+path, append([]any{c.accountSID}, args...)...).
		Client(c.httpClient).
		BasicAuth(c.accountSID, c.authToken).
		Accept("application/json").
		AddValidator(requests.ValidatorHandler(requests.DefaultValidator, requests.ToJSON(apiErr)))
	return b, apiErr
}

func wrapErr(op string, err error, apiErr *APIError) error {
	if apiErr.Code != 0 || apiErr.Message != "" {
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateCall dials to and points Twilio at our webhooks under webhookBaseURL.
func (c *Client) CreateCall(ctx context.Context, to, webhookBaseURL string) (*Call, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}
	base := strings.TrimRight(webhookBaseURL, "/")
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.phoneNumber)
	form.Set("Url", base+"/incoming-call")
	form.Set("StatusCallback", base+"/call-status")
	for _, event := range []string{"initiated", "ringing", "answered", "completed"} {
		form.Add("StatusCallbackEvent", event)
	}
	form.Set("StatusCallbackMethod", http.MethodPost)

	var call Call
	b, apiErr := c.builder("/Calls.json")
	err := b.BodyForm(form).ToJSON(&call).Fetch(ctx)
	if err != nil {
		return nil, wrapErr("create call", err, apiErr)
	}
	return &call, nil
}

// FetchCall retrieves a call by SID.
func (c *Client) FetchCall(ctx context.Context, callSid string) (*Call, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}
	var call Call
	b, apiErr := c.builder("/Calls/%s.json", callSid)
	if err := b.ToJSON(&call).Fetch(ctx); err != nil {
		return nil, wrapErr("fetch call", err, apiErr)
	}
	return &call, nil
}

// HangupCall completes an in-progress call.
func (c *Client) HangupCall(ctx context.Context, callSid string) (*Call, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}
	var call Call
	b, apiErr := c.builder("/Calls/%s.json", callSid)
	err := b.BodyForm(url.Values{"Status": {"completed"}}).ToJSON(&call).Fetch(ctx)
	if err != nil {
		return nil, wrapErr("hangup call", err, apiErr)
	}
	return &call, nil
}
