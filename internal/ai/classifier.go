package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/rueidis"
	"github.com/robalyx/modreport/internal/setup/config"
	"go.uber.org/zap"
)

var (
	ErrUnknownBackend = errors.New("unknown classifier backend")
	ErrMissingAPIKey  = errors.New("classifier backend has no API key")
	ErrEmptyResponse  = errors.New("classifier returned no answer")
)

// Backend names accepted in the classifier config.
const (
	BackendEcho             = "echo"
	BackendOpenAIModeration = "openai_moderation"
	BackendOpenAIPolicy     = "openai_policy"
	BackendGemini           = "gemini"
)

// defaultTimeout bounds one classification when the config leaves it unset.
const defaultTimeout = 20 * time.Second

// Classifier scores a message and returns a short human readable result.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Client is the configured classifier and the resources it holds.
type Client struct {
	Classifier

	genaiClient *genai.Client
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	cache    rueidis.Client
	cacheTTL time.Duration
}

// WithCache stores results in Redis so repeated messages are scored once.
func WithCache(client rueidis.Client, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = client
		o.cacheTTL = ttl
	}
}

// New builds the classifier named by the config. It returns nil when no
// backend is configured.
func New(common *config.CommonConfig, cfg *config.Classifier, logger *zap.Logger, opts ...Option) (*Client, error) {
	if len(cfg.Backends) == 0 {
		return nil, nil //nolint:nilnil // no classifier configured
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.Named("classifier")
	client := &Client{logger: logger}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	backends := make([]Classifier, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		backend, err := client.newBackend(common, cfg, name)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create %s backend: %w", name, err)
		}

		// Remote backends share the same protection
		if name != BackendEcho {
			backend = newGuard(name, backend, common, timeout, maxConcurrent(common, name), logger)
		}

		backends = append(backends, backend)
	}

	if len(backends) == 1 {
		client.Classifier = backends[0]
	} else {
		client.Classifier = NewMulti(cfg.Backends, backends)
	}

	if o.cache != nil {
		client.Classifier = NewCache(client.Classifier, strings.Join(cfg.Backends, ","), o.cache, o.cacheTTL, logger)
	}

	logger.Info("Classifier ready", zap.Strings("backends", cfg.Backends))

	return client, nil
}

// Close releases the backend clients.
func (c *Client) Close() {
	if c.genaiClient != nil {
		if err := c.genaiClient.Close(); err != nil {
			c.logger.Warn("Failed to close Gemini client", zap.Error(err))
		}
	}
}

// newBackend creates one unguarded backend.
func (c *Client) newBackend(common *config.CommonConfig, cfg *config.Classifier, name string) (Classifier, error) {
	switch name {
	case BackendEcho:
		return Echo{}, nil
	case BackendOpenAIModeration:
		if common.OpenAI.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewModeration(&common.OpenAI), nil
	case BackendOpenAIPolicy:
		if common.OpenAI.APIKey == "" {
			return nil, ErrMissingAPIKey
		}

		policy, err := loadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}

		return NewPolicy(&common.OpenAI, policy), nil
	case BackendGemini:
		if common.Gemini.APIKey == "" {
			return nil, ErrMissingAPIKey
		}

		policy, err := loadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}

		backend, err := NewGemini(context.Background(), &common.Gemini, policy)
		if err != nil {
			return nil, err
		}

		c.genaiClient = backend.client

		return backend, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}

// maxConcurrent returns the request limit for a backend's provider.
func maxConcurrent(common *config.CommonConfig, name string) int64 {
	limit := common.OpenAI.MaxConcurrent
	if name == BackendGemini {
		limit = common.Gemini.MaxConcurrent
	}

	return max(limit, 1)
}

// loadPolicy reads the policy text appended to the classification instructions.
func loadPolicy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read policy file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Echo returns the message unchanged.
type Echo struct{}

func (Echo) Classify(_ context.Context, text string) (string, error) {
	return text, nil
}
