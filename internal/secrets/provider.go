// internal/secrets/provider.go
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var ErrEmptySecret = errors.New("secret has no string value")

// Bundle is the process-wide configuration fetched once from the secret store.
type Bundle struct {
	JWTSecret        string `json:"JWT_SECRET"`
	BackendAPIKey    string `json:"BACKEND_API_KEY"`
	SendGridAPIKey   string `json:"SENDGRID_API_KEY"`
	TwilioAccountSID string `json:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `json:"TWILIO_AUTH_TOKEN"`
	StripeSecretKey  string `json:"STRIPE_SECRET_KEY"`
	S3Bucket         string `json:"S3_BUCKET"`
}

// merge fills every empty field of b from fallback.
func (b *Bundle) merge(fallback Bundle) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&b.JWTSecret, fallback.JWTSecret)
	fill(&b.BackendAPIKey, fallback.BackendAPIKey)
	fill(&b.SendGridAPIKey, fallback.SendGridAPIKey)
	fill(&b.TwilioAccountSID, fallback.TwilioAccountSID)
	fill(&b.TwilioAuthToken, fallback.TwilioAuthToken)
	fill(&b.StripeSecretKey, fallback.StripeSecretKey)
	fill(&b.S3Bucket, fallback.S3Bucket)
}

// Fetcher returns the raw JSON text of a secret.
type Fetcher interface {
	FetchSecret(ctx context.Context, secretID string) (string, error)
}

// Provider memoizes the bundle. The first successful fetch wins; a failed
// fetch is not cached so the next caller retries.
type Provider struct {
	fetcher  Fetcher
	secretID string
	fallback Bundle

	mu     sync.Mutex
	bundle *Bundle
}

func NewProvider(fetcher Fetcher, secretID string, fallback Bundle) *Provider {
	return &Provider{fetcher: fetcher, secretID: secretID, fallback: fallback}
}

// NewStatic returns a provider that never contacts a secret store.
func NewStatic(b Bundle) *Provider {
	return &Provider{bundle: &b}
}

// GetInstance returns the memoized bundle, fetching it on first use.
func (p *Provider) GetInstance(ctx context.Context) (*Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bundle != nil {
		return p.bundle, nil
	}
	if p.fetcher == nil || p.secretID == "" {
		b := p.fallback
		p.bundle = &b
		return p.bundle, nil
	}

	raw, err := p.fetcher.FetchSecret(ctx, p.secretID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secret %s: %w", p.secretID, err)
	}
	var b Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", p.secretID, err)
	}
	b.merge(p.fallback)
	p.bundle = &b
	return p.bundle, nil
}

// SecretsManagerFetcher reads secrets from AWS Secrets Manager.
type SecretsManagerFetcher struct {
	Client *secretsmanager.Client
}

func NewSecretsManagerFetcher(ctx context.Context, region string) (*SecretsManagerFetcher, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SecretsManagerFetcher{Client: secretsmanager.NewFromConfig(sdkConfig)}, nil
}

func (f *SecretsManagerFetcher) FetchSecret(ctx context.Context, secretID string) (string, error) {
	out, err := f.Client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", ErrEmptySecret
	}
	return *out.SecretString, nil
}
