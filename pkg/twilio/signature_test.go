package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureSortsParams(t *testing.T) {
	params := url.Values{
		"To":      {"+18005551212"},
		"CallSid": {"CA1234567890ABCDE"},
		"Digits":  {"1234"},
	}
	fullURL := "https://mycompany.com/myapp.php?foo=1&bar=2"

	mac := hmac.New(sha1.New, []byte("12345"))
	mac.Write([]byte(fullURL + "CallSidCA1234567890ABCDE" + "Digits1234" + "To+18005551212"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	sig := Signature("12345", fullURL, params)
	assert.Equal(t, want, sig)
	assert.True(t, ValidSignature("12345", fullURL, params, sig))
}

func TestValidSignatureRejects(t *testing.T) {
	params := url.Values{"CallSid": {"CA1"}}
	sig := Signature("token", "https://x/incoming-call", params)

	assert.False(t, ValidSignature("other", "https://x/incoming-call", params, sig))
	assert.False(t, ValidSignature("token", "https://x/handle-speech", params, sig))
	assert.False(t, ValidSignature("token", "https://x/incoming-call", params, ""))
}
