package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLive struct {
	mu        sync.Mutex
	connected bool
	connectOK bool
	written   [][]byte
	stopped   int
}

func (f *fakeLive) Connect() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return f.connectOK
}

func (f *fakeLive) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeLive) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func results(t *testing.T, raw string) *msginterfaces.MessageResponse {
	t.Helper()
	var mr msginterfaces.MessageResponse
	require.NoError(t, sonic.Unmarshal([]byte(raw), &mr))
	return &mr
}

func TestAuraModel(t *testing.T) {
	assert.Equal(t, "aura-2-luna-en", AuraModel("bored"))
	assert.Equal(t, "aura-2-hera-en", AuraModel("exhausted"))
	assert.Equal(t, "aura-2-athena-en", AuraModel("overly_cheerful"))
}

func TestNewDeepgramRequiresKey(t *testing.T) {
	_, err := NewDeepgram("", "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDeepgramHost(t *testing.T) {
	assert.Equal(t, "", deepgramHost(""))
	assert.Equal(t, "", deepgramHost("https://api.deepgram.com/"))
	assert.Equal(t, "dg.internal:8080", deepgramHost("http://dg.internal:8080"))
}

func TestDeepgramOptions(t *testing.T) {
	d, err := NewDeepgram("dg-key", "", "en-GB")
	require.NoError(t, err)

	live := d.liveOptions()
	assert.Equal(t, "nova-2", live.Model)
	assert.Equal(t, "en-GB", live.Language)
	assert.Equal(t, "mulaw", live.Encoding)
	assert.Equal(t, 8000, live.SampleRate)
	assert.Equal(t, 1, live.Channels)
	assert.True(t, live.InterimResults)
	assert.True(t, live.VadEvents)
	assert.Equal(t, "1000", live.UtteranceEndMs)
	assert.True(t, d.clientOptions().EnableKeepAlive)

	sp := speakOptions("passive_aggressive")
	assert.Equal(t, "aura-2-stella-en", sp.Model)
	assert.Equal(t, "mulaw", sp.Encoding)
	assert.Equal(t, 8000, sp.SampleRate)
	assert.Equal(t, "none", sp.Container)
}

func TestDeepgramSynthesize(t *testing.T) {
	d, err := NewDeepgram("dg-key", "", "en-US")
	require.NoError(t, err)
	d.speak = func(ctx context.Context, text string, opts *interfaces.SpeakOptions) ([]byte, error) {
		assert.Equal(t, "No problem.", text)
		assert.Equal(t, "aura-2-stella-en", opts.Model)
		return []byte{0xFF, 0xFE, 0xFD}, nil
	}
	audio, err := d.Synthesize(context.Background(), "No problem.", SynthOptions{Style: "passive_aggressive"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE, 0xFD}, audio)
}

func TestDeepgramSynthesizeError(t *testing.T) {
	d, err := NewDeepgram("bad", "", "")
	require.NoError(t, err)
	d.speak = func(context.Context, string, *interfaces.SpeakOptions) ([]byte, error) {
		return nil, errors.New("401 unauthorized")
	}
	_, err = d.Synthesize(context.Background(), "hi", SynthOptions{})
	assert.ErrorContains(t, err, "deepgram speak")
}

func TestDeepgramListen(t *testing.T) {
	d, err := NewDeepgram("dg-key", "", "en-US")
	require.NoError(t, err)

	conn := &fakeLive{connectOK: true}
	var cb *liveCallback
	d.dial = func(ctx context.Context, c *liveCallback) (liveConn, error) {
		cb = c
		return conn, nil
	}

	session, err := d.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, conn.connected)

	require.NoError(t, session.SendAudio([]byte{1, 2, 3}))
	assert.Equal(t, [][]byte{{1, 2, 3}}, conn.written)

	require.NoError(t, cb.SpeechStarted(&msginterfaces.SpeechStartedResponse{}))
	require.NoError(t, cb.Message(results(t, `{"is_final":false,"channel":{"alternatives":[{"transcript":"book a"}]}}`)))
	require.NoError(t, cb.Message(results(t, `{"is_final":true,"channel":{"alternatives":[{"transcript":"book a meeting"}]}}`)))
	require.NoError(t, cb.Message(results(t, `{"is_final":true,"channel":{"alternatives":[{"transcript":""}]}}`)))
	require.NoError(t, cb.Metadata(&msginterfaces.MetadataResponse{}))
	require.NoError(t, cb.UtteranceEnd(&msginterfaces.UtteranceEndResponse{}))
	require.NoError(t, cb.Message(results(t, `{"is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":"today"}]}}`)))

	var got []Transcript
	timeout := time.After(2 * time.Second)
	for len(got) < 6 {
		select {
		case tr := <-session.Transcripts():
			got = append(got, tr)
		case <-timeout:
			t.Fatalf("timed out, got %+v", got)
		}
	}
	assert.Equal(t, []Transcript{
		{SpeechStarted: true},
		{Text: "book a"},
		{Text: "book a meeting", IsFinal: true},
		{UtteranceEnd: true},
		{Text: "today", IsFinal: true},
		{UtteranceEnd: true},
	}, got)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, conn.stopped)
	assert.Error(t, session.SendAudio([]byte{4}))

	_, open := <-session.Transcripts()
	assert.False(t, open)

	// events after close are dropped
	require.NoError(t, cb.UtteranceEnd(&msginterfaces.UtteranceEndResponse{}))
	require.NoError(t, cb.Close(&msginterfaces.CloseResponse{}))
}

func TestDeepgramListenConnectFails(t *testing.T) {
	d, err := NewDeepgram("dg-key", "", "en-US")
	require.NoError(t, err)
	d.dial = func(context.Context, *liveCallback) (liveConn, error) {
		return &fakeLive{}, nil
	}
	_, err = d.Start(context.Background())
	assert.ErrorContains(t, err, "connect failed")

	d.dial = func(context.Context, *liveCallback) (liveConn, error) {
		return nil, errors.New("handshake refused")
	}
	_, err = d.Start(context.Background())
	assert.ErrorContains(t, err, "handshake refused")
}

func TestDeepgramProviderClosesTranscripts(t *testing.T) {
	cb := newLiveCallback()
	require.NoError(t, cb.Close(&msginterfaces.CloseResponse{}))
	_, open := <-cb.transcripts
	assert.False(t, open)
}
