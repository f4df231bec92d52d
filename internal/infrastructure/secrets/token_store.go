// Package secrets keeps shop access tokens in AWS Secrets Manager, one secret
// per shop.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

const resourceNotFoundException = "ResourceNotFoundException"

// ManagerAPI is the subset of the Secrets Manager client the store uses
type ManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// tokenSecret is the JSON stored as the secret string
type tokenSecret struct {
	AccessToken string     `json:"access_token"`
	Scopes      []string   `json:"scopes,omitempty"`
	InstalledAt time.Time  `json:"installed_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// TokenStore implements ports.TokenStore on Secrets Manager. Secrets are
// named prefix + shop domain.
type TokenStore struct {
	api    ManagerAPI
	prefix string
	logger zerolog.Logger
}

var _ ports.TokenStore = (*TokenStore)(nil)

// NewTokenStore loads the default AWS configuration
func NewTokenStore(ctx context.Context, prefix string, logger zerolog.Logger) (*TokenStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewTokenStoreWithAPI(secretsmanager.NewFromConfig(cfg), prefix, logger), nil
}

// NewTokenStoreWithAPI uses the given client
func NewTokenStoreWithAPI(api ManagerAPI, prefix string, logger zerolog.Logger) *TokenStore {
	return &TokenStore{api: api, prefix: prefix, logger: logger}
}

func (s *TokenStore) secretName(shop string) string {
	return s.prefix + shop
}

// GetAccessToken returns the shop's token, or domain.ErrTokenNotFound when the
// secret is missing, empty or revoked
func (s *TokenStore) GetAccessToken(ctx context.Context, shop string) (string, error) {
	secret, err := s.read(ctx, shop)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.RevokedAt != nil || secret.AccessToken == "" {
		return "", domain.ErrTokenNotFound
	}
	return secret.AccessToken, nil
}

// SaveToken writes a new secret version, creating the secret on first install
func (s *TokenStore) SaveToken(ctx context.Context, token *domain.ShopToken) error {
	secret := tokenSecret{
		AccessToken: token.AccessToken,
		Scopes:      token.Scopes,
		InstalledAt: token.InstalledAt,
	}
	if secret.InstalledAt.IsZero() {
		secret.InstalledAt = time.Now().UTC()
	}
	return s.write(ctx, token.ShopDomain, secret)
}

// RevokeToken blanks the token and stamps the revocation. Unknown shops are a no-op.
func (s *TokenStore) RevokeToken(ctx context.Context, shop string) error {
	secret, err := s.read(ctx, shop)
	if err != nil {
		return err
	}
	if secret == nil {
		return nil
	}

	now := time.Now().UTC()
	secret.AccessToken = ""
	secret.RevokedAt = &now
	return s.write(ctx, shop, *secret)
}

func (s *TokenStore) read(ctx context.Context, shop string) (*tokenSecret, error) {
	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName(shop)),
	})
	if err != nil {
		if apiErrorCode(err) == resourceNotFoundException {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token secret: %w", err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return nil, nil
	}

	var secret tokenSecret
	if err := json.Unmarshal([]byte(*out.SecretString), &secret); err != nil {
		return nil, fmt.Errorf("failed to decode token secret: %w", err)
	}
	return &secret, nil
}

func (s *TokenStore) write(ctx context.Context, shop string, secret tokenSecret) error {
	body, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("failed to encode token secret: %w", err)
	}
	name := s.secretName(shop)

	_, err = s.api.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(string(body)),
	})
	if err == nil {
		return nil
	}
	if apiErrorCode(err) != resourceNotFoundException {
		return fmt.Errorf("failed to put token secret: %w", err)
	}

	s.logger.Info().Str("shop", shop).Msg("Creating token secret")
	_, err = s.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(string(body)),
		Description:  aws.String("Shopify offline access token for " + shop),
	})
	if err != nil {
		return fmt.Errorf("failed to create token secret: %w", err)
	}
	return nil
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
