package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BDNK1/sflowg-marketplace/runtime/plugin"
	"github.com/go-playground/validator/v10"
)

func init() {
	// marketplace_env accepts the environments that have a base URL
	err := plugin.RegisterValidator("marketplace_env", func(fl validator.FieldLevel) bool {
		_, ok := baseURLs[Environment(fl.Field().String())]
		return ok
	})
	if err != nil {
		panic(err)
	}
}

// Config holds the marketplace plugin configuration with declarative tags.
// Node-level additional fields override the retry and timeout values per call.
type Config struct {
	Environment       string        `yaml:"environment" default:"dev" validate:"marketplace_env"`
	BaseURL           string        `yaml:"base_url" validate:"omitempty,https_url"`
	Timeout           time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	MaxRetries        int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=10"`
	RetryOn5xx        bool          `yaml:"retry_on_5xx" default:"true"`
	BackoffBase       time.Duration `yaml:"backoff_base" default:"1s" validate:"gte=0"`
	Debug             bool          `yaml:"debug" default:"false"`
	RequestsPerSecond float64       `yaml:"requests_per_second" default:"0" validate:"gte=0"`
}

// Plugin contributes the marketplace nodes.
type Plugin struct {
	Config Config // Exported so the CLI can set it during initialization

	// Optional dependencies. Zero values fall back to defaults.
	Logger     *slog.Logger
	HTTPClient *http.Client
	Sleeper    Sleeper

	client *Client
}

// Initialize implements the plugin.Initializer interface.
// Config is already validated by the host before this is called.
func (p *Plugin) Initialize() error {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	opts := []Option{
		WithLogger(p.Logger),
		WithDebug(p.Config.Debug),
		WithRateLimit(p.Config.RequestsPerSecond),
	}
	if p.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(p.HTTPClient))
	}
	if p.Sleeper != nil {
		opts = append(opts, WithSleeper(p.Sleeper))
	}
	p.client = NewClient(opts...)

	p.Logger.Info("Marketplace plugin initialized",
		"environment", p.Config.Environment,
		"timeout", p.Config.Timeout,
		"max_retries", p.Config.MaxRetries)
	return nil
}

// Shutdown implements the plugin.Shutdowner interface.
func (p *Plugin) Shutdown() error {
	if p.client != nil {
		p.client.http.GetClient().CloseIdleConnections()
		p.client = nil
	}
	return nil
}

// Nodes implements plugin.NodeProvider.
func (p *Plugin) Nodes() []plugin.Node {
	nodes := make([]plugin.Node, 0, len(catalogue))
	for _, def := range catalogue {
		nodes = append(nodes, &marketplaceNode{plugin: p, def: def})
	}
	return nodes
}

// Client returns the client created by Initialize.
func (p *Plugin) Client() (*Client, error) {
	if p.client == nil {
		return nil, fmt.Errorf("marketplace plugin is not initialized")
	}
	return p.client, nil
}

// TestCredentials sends the credential test request for raw using the
// configured environment. Unlike the plain health check it always carries the
// bearer header, so a missing ID token fails before the call.
func (p *Plugin) TestCredentials(ctx context.Context, raw map[string]any) (any, error) {
	client, err := p.Client()
	if err != nil {
		return nil, err
	}
	credentials, err := CredentialsFromMap(raw)
	if err != nil {
		return nil, err
	}
	baseURL, err := ResolveBaseURL(Environment(p.Config.Environment), p.Config.BaseURL)
	if err != nil {
		return nil, err
	}

	op := MarketplaceCredentialType.TestRequest
	spec, err := Build(op, Params{})
	if err != nil {
		return nil, err
	}
	spec.RequiresAuth = true

	return client.Send(ctx, Request{
		Operation:   op,
		BaseURL:     baseURL,
		Spec:        spec,
		Credentials: credentials,
		Retry:       RetryPolicy{BackoffBase: p.Config.BackoffBase},
		Timeout:     p.Config.Timeout,
		Format:      FormatJSON,
	})
}

// retryPolicy returns the configured policy with per-call overrides applied.
func (p *Plugin) retryPolicy(maxRetries *int, retryOn5xx *bool) RetryPolicy {
	policy := RetryPolicy{
		MaxRetries:  p.Config.MaxRetries,
		RetryOn5xx:  p.Config.RetryOn5xx,
		BackoffBase: p.Config.BackoffBase,
	}
	if maxRetries != nil {
		policy.MaxRetries = *maxRetries
	}
	if retryOn5xx != nil {
		policy.RetryOn5xx = *retryOn5xx
	}
	return policy
}

var (
	_ plugin.Initializer  = (*Plugin)(nil)
	_ plugin.Shutdowner   = (*Plugin)(nil)
	_ plugin.NodeProvider = (*Plugin)(nil)
)
