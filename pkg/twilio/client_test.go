package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	cases := []Config{
		{AccountSID: "AC1"},
		{AccountSID: "XX1", AuthToken: "t"},
		{AccountSID: "AC1", AuthToken: "t", Skip: true},
	}
	for _, cfg := range cases {
		c, err := NewClient(cfg)
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.False(t, c.Available())
	}

	var nilClient *Client
	_, err := nilClient.CreateCall(context.Background(), "+1555", "https://x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+15550001", r.PostForm.Get("To"))
		assert.Equal(t, DefaultFromNumber, r.PostForm.Get("From"))
		assert.Equal(t, "https://hooks.example.com/incoming-call", r.PostForm.Get("Url"))
		assert.Equal(t, "https://hooks.example.com/call-status", r.PostForm.Get("StatusCallback"))
		assert.Equal(t, []string{"initiated", "ringing", "answered", "completed"}, r.PostForm["StatusCallbackEvent"])
		assert.Equal(t, "POST", r.PostForm.Get("StatusCallbackMethod"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA999","status":"queued","to":"+15550001"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	call, err := c.CreateCall(context.Background(), "+15550001", "https://hooks.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "CA999", call.SID)
	assert.Equal(t, "queued", call.Status)
}

func TestCreateCallAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.CreateCall(context.Background(), "nope", "https://hooks.example.com")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 21211, apiErr.Code)
}

func TestFetchAndHangup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls/CA1.json", r.URL.Path)
		status := "in-progress"
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			status = r.PostForm.Get("Status")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid":"CA1","status":"` + status + `"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	call, err := c.FetchCall(context.Background(), "CA1")
	require.NoError(t, err)
	assert.Equal(t, "in-progress", call.Status)

	call, err = c.HangupCall(context.Background(), "CA1")
	require.NoError(t, err)
	assert.Equal(t, "completed", call.Status)
}
