package ai_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/robalyx/modreport/internal/ai"
	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const moderationBody = `{
	"id": "modr-1",
	"model": "omni-moderation-latest",
	"results": [{
		"flagged": true,
		"categories": {"harassment": true, "harassment/threatening": false, "hate": false, "hate/threatening": false},
		"category_scores": {"harassment": 0.91, "harassment/threatening": 0.02, "hate": 0.1, "hate/threatening": 0.01}
	}]
}`

const chatBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 0,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "1 0.92"}
	}]
}`

// fakeOpenAI serves canned responses and counts requests. The first failures
// requests answer with failStatus.
type fakeOpenAI struct {
	server     *httptest.Server
	requests   atomic.Int32
	failures   int32
	failStatus int
}

func newFakeOpenAI(t *testing.T, failures int32, failStatus int) *fakeOpenAI {
	t.Helper()

	f := &fakeOpenAI{failures: failures, failStatus: failStatus}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")

		if n <= f.failures {
			w.WriteHeader(f.failStatus)
			_, _ = w.Write([]byte(`{"error": {"message": "failure", "type": "server_error"}}`))
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/moderations"):
			_, _ = w.Write([]byte(moderationBody))
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = w.Write([]byte(chatBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)

	return f
}

func testCommon(baseURL string) *config.CommonConfig {
	return &config.CommonConfig{
		CircuitBreaker: config.CircuitBreaker{
			MaxRequests:         1,
			Timeout:             60000,
			ConsecutiveFailures: 3,
		},
		Retry: config.Retry{
			MaxRetries: 3,
			Delay:      1,
			MaxDelay:   5,
		},
		OpenAI: config.OpenAI{
			BaseURL:       baseURL + "/v1/",
			APIKey:        "test-key",
			MaxConcurrent: 2,
		},
	}
}

func writePolicy(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("No insults.\n"), 0o600))

	return path
}

func TestNewWithoutBackends(t *testing.T) {
	t.Parallel()

	client, err := ai.New(&config.CommonConfig{}, &config.Classifier{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		wantErr error
	}{
		{name: "unknown backend", backend: "crystal_ball", wantErr: ai.ErrUnknownBackend},
		{name: "openai without key", backend: ai.BackendOpenAIModeration, wantErr: ai.ErrMissingAPIKey},
		{name: "gemini without key", backend: ai.BackendGemini, wantErr: ai.ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ai.New(&config.CommonConfig{}, &config.Classifier{Backends: []string{tt.backend}}, zap.NewNop())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEcho(t *testing.T) {
	t.Parallel()

	client, err := ai.New(&config.CommonConfig{}, &config.Classifier{Backends: []string{ai.BackendEcho}}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	got, err := client.Classify(t.Context(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
}

func TestModerationBackend(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 0, 0)
	client, err := ai.New(testCommon(api.server.URL),
		&config.Classifier{Backends: []string{ai.BackendOpenAIModeration}}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Classify(t.Context(), reportedText)
	require.NoError(t, err)
	assert.Equal(t,
		"harassment: true (0.91), harassment_threatening: false (0.02), hate: false (0.10), hate_threatening: false (0.01)",
		got)
}

func TestPolicyBackend(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 0, 0)
	client, err := ai.New(testCommon(api.server.URL), &config.Classifier{
		Backends:   []string{ai.BackendOpenAIPolicy},
		PolicyFile: writePolicy(t),
	}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Classify(t.Context(), reportedText)
	require.NoError(t, err)
	assert.Equal(t, "violation (confidence 0.92)", got)
}

func TestPolicyBackendMissingPolicyFile(t *testing.T) {
	t.Parallel()

	_, err := ai.New(testCommon("http://127.0.0.1"), &config.Classifier{
		Backends:   []string{ai.BackendOpenAIPolicy},
		PolicyFile: filepath.Join(t.TempDir(), "missing.txt"),
	}, zap.NewNop())
	require.Error(t, err)
}

func TestMultipleBackends(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 0, 0)
	client, err := ai.New(testCommon(api.server.URL), &config.Classifier{
		Backends:   []string{ai.BackendEcho, ai.BackendOpenAIPolicy},
		PolicyFile: writePolicy(t),
	}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Classify(t.Context(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi | openai_policy: violation (confidence 0.92)", got)
}

func TestGuardRetriesServerErrors(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 2, http.StatusInternalServerError)
	client, err := ai.New(testCommon(api.server.URL),
		&config.Classifier{Backends: []string{ai.BackendOpenAIModeration}}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(t.Context(), reportedText)
	require.NoError(t, err)
	assert.Equal(t, int32(3), api.requests.Load())
}

func TestGuardDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 100, http.StatusBadRequest)
	client, err := ai.New(testCommon(api.server.URL),
		&config.Classifier{Backends: []string{ai.BackendOpenAIModeration}}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(t.Context(), reportedText)
	require.Error(t, err)
	assert.Equal(t, int32(1), api.requests.Load())
}

func TestGuardOpensCircuit(t *testing.T) {
	t.Parallel()

	api := newFakeOpenAI(t, 100, http.StatusBadRequest)
	common := testCommon(api.server.URL)
	common.CircuitBreaker.ConsecutiveFailures = 1

	client, err := ai.New(common,
		&config.Classifier{Backends: []string{ai.BackendOpenAIModeration}}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(t.Context(), reportedText)
	require.Error(t, err)

	// The open circuit fails fast without reaching the API
	_, err = client.Classify(t.Context(), reportedText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, int32(1), api.requests.Load())
}
