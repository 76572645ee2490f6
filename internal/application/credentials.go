package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/charmbracelet/log"
)

const (
	// APIKeySecretKey is the secret-store entry written by UpdateAPIKey.
	APIKeySecretKey = "codelynx/cerebras_api_key"
	APIKeyEnvVar    = "CEREBRAS_API_KEY"
)

// CredentialProvider resolves the provider API key on every call so rotation is seen immediately.
type CredentialProvider struct {
	store     ports.SecretStore
	settings  ports.SettingsSource
	factory   ports.ClientFactory
	lookupEnv func(string) (string, bool)
	logger    *log.Logger
}

func NewCredentialProvider(store ports.SecretStore, settings ports.SettingsSource, factory ports.ClientFactory, logger *log.Logger) *CredentialProvider {
	return &CredentialProvider{
		store:     store,
		settings:  settings,
		factory:   factory,
		lookupEnv: os.LookupEnv,
		logger:    orDiscard(logger),
	}
}

// Resolve walks the secret store, the cerebras_api_key setting and CEREBRAS_API_KEY, in that order.
func (p *CredentialProvider) Resolve(ctx context.Context) (domain.Credential, error) {
	if p.store != nil {
		value, err := p.store.Get(ctx, APIKeySecretKey)
		switch {
		case err == nil:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return domain.Credential{Value: trimmed, Source: domain.CredentialSourceSetting}, nil
			}
		case isContextError(err):
			return domain.Credential{}, err
		case errors.Is(err, domain.ErrSecretNotFound):
		default:
			p.logger.Warn("secret store lookup failed", "key", APIKeySecretKey, "err", err)
		}
	}

	settings, err := p.settings.Load(ctx)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("load settings: %w", err)
	}
	if trimmed := strings.TrimSpace(settings.APIKey); trimmed != "" {
		return domain.Credential{Value: trimmed, Source: domain.CredentialSourceSetting}, nil
	}

	if value, ok := p.lookupEnv(APIKeyEnvVar); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return domain.Credential{Value: trimmed, Source: domain.CredentialSourceEnvironment}, nil
		}
	}

	p.logger.Debug("no api key found in secret store, settings or environment")
	return domain.Credential{}, domain.ErrCredentialMissing
}

// Validate builds a client handle locally; no request is sent.
func (p *CredentialProvider) Validate(credential domain.Credential, settings domain.Settings) (ports.CompletionClient, error) {
	if credential.IsZero() {
		return nil, domain.ErrCredentialMissing
	}

	client, err := p.factory.NewClient(credential, settings)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("create provider client: %w", err)
	}

	return client, nil
}

func (p *CredentialProvider) Check(ctx context.Context) domain.CredentialStatus {
	credential, err := p.Resolve(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return domain.CredentialMissing
		}
		p.logger.Error("api key check failed", "err", err)
		return domain.CredentialInvalid
	}

	settings, err := p.settings.Load(ctx)
	if err != nil {
		p.logger.Error("api key check failed", "err", err)
		return domain.CredentialInvalid
	}

	if _, err := p.Validate(credential, settings); err != nil {
		p.logger.Warn("api key rejected", "source", credential.Source, "fingerprint", credential.Fingerprint(), "err", err)
		return domain.CredentialInvalid
	}

	return domain.CredentialConfigured
}

// Update stores a new key after validating it, then re-checks the resolved credential.
func (p *CredentialProvider) Update(ctx context.Context, apiKey string) (domain.CredentialStatus, error) {
	credential := domain.Credential{Value: strings.TrimSpace(apiKey), Source: domain.CredentialSourceSetting}
	if credential.IsZero() {
		return domain.CredentialMissing, domain.ErrCredentialMissing
	}

	settings, err := p.settings.Load(ctx)
	if err != nil {
		return domain.CredentialInvalid, fmt.Errorf("load settings: %w", err)
	}

	if _, err := p.Validate(credential, settings); err != nil {
		return domain.CredentialInvalid, err
	}

	if p.store == nil {
		return domain.CredentialInvalid, errors.New("no secret store configured")
	}
	if err := p.store.Put(ctx, APIKeySecretKey, credential.Value); err != nil {
		return domain.CredentialInvalid, fmt.Errorf("store api key: %w", err)
	}

	p.logger.Info("api key updated", "fingerprint", credential.Fingerprint())
	return p.Check(ctx), nil
}

// Clear removes the stored key. A key that was never stored is not an error; setting and environment keys are untouched.
func (p *CredentialProvider) Clear(ctx context.Context) (domain.CredentialStatus, error) {
	if p.store == nil {
		return domain.CredentialInvalid, errors.New("no secret store configured")
	}
	if err := p.store.Delete(ctx, APIKeySecretKey); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return domain.CredentialInvalid, fmt.Errorf("delete api key: %w", err)
	}

	p.logger.Info("stored api key removed")
	return p.Check(ctx), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
