package agent

import (
	"github.com/cadre-oss/sherpa/internal/config"
	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/provider"
	"github.com/cadre-oss/sherpa/internal/provider/anthropic"
	"github.com/cadre-oss/sherpa/internal/provider/openai"
)

// NewProvider creates the configured provider wrapped with retries.
func NewProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	var p provider.Provider
	switch cfg.Name {
	case "anthropic":
		p = anthropic.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "openai", "":
		p = openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, sherpaErrors.Newf(sherpaErrors.CodeConfigInvalid, "unknown provider %q", cfg.Name).
			WithSuggestion("set provider.name to 'anthropic' or 'openai'")
	}

	retry := provider.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	return provider.NewRetryProvider(p, retry), nil
}
