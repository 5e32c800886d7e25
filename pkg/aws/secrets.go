package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// dbCredentialsSecret is where deployments keep the Postgres connection
// settings, as a JSON object mirroring the POSTGRES_* environment variables.
const dbCredentialsSecret = "brightbuy/DB_CREDENTIALS"

// DBCredentials is the payload stored under dbCredentialsSecret. Empty
// fields mean "keep whatever the environment already has".
type DBCredentials struct {
	User     string `json:"POSTGRES_USER"`
	Password string `json:"POSTGRES_PASSWORD"`
	Database string `json:"POSTGRES_DB"`
	Host     string `json:"POSTGRES_HOST"`
	Port     string `json:"POSTGRES_PORT"`
}

// Env returns the credential fields keyed by their environment variable
// names, omitting empty values, so callers can overlay them onto os.Environ.
func (c DBCredentials) Env() map[string]string {
	env := make(map[string]string, 5)
	for key, val := range map[string]string{
		"POSTGRES_USER":     c.User,
		"POSTGRES_PASSWORD": c.Password,
		"POSTGRES_DB":       c.Database,
		"POSTGRES_HOST":     c.Host,
		"POSTGRES_PORT":     c.Port,
	} {
		if val != "" {
			env[key] = val
		}
	}
	return env
}

type SecretsClient struct {
	client *secretsmanager.Client
	cache  map[string]string
	mu     sync.RWMutex
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return &SecretsClient{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]string),
	}
}

// DBCredentials fetches and parses the database credential secret.
func (s *SecretsClient) DBCredentials(ctx context.Context) (*DBCredentials, error) {
	raw, err := s.getSecret(ctx, dbCredentialsSecret)
	if err != nil {
		return nil, err
	}
	var creds DBCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("parse secret %s: %w", dbCredentialsSecret, err)
	}
	return &creds, nil
}

func (s *SecretsClient) getSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	s.cache[name] = *out.SecretString
	s.mu.Unlock()

	return *out.SecretString, nil
}
