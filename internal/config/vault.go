package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumescreen/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KV v2 paths)
type VaultSecrets struct {
	// APIKeys secret holds a "keys" field with comma-separated values: "key1,key2,key3"
	APIKeys string `mapstructure:"apiKeys"`
	// TLSCerts secret holds PEM content in "cert", "key" and "ca"
	TLSCerts string `mapstructure:"tlsCerts"`
	// Catalog secret holds a role catalog YAML document in "roles"
	Catalog string `mapstructure:"catalog"`
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretSource is the read side of a Vault client
type secretSource interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	logger.Debug("Initializing Vault client",
		"address", config.Address,
		"namespace", config.Namespace,
		"token_file", config.TokenFile,
		"has_token", config.Token != "")

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		logger.LogError(err, "Failed to create Vault client")
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		logger.LogError(err, "Vault token is required when Vault is enabled")
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", config.Address)
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Successfully connected to Vault",
		"address", config.Address,
		"version", health.Version,
		"sealed", health.Sealed,
		"cluster_name", health.ClusterName)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		vc.logger.LogError(err, "Failed to read secret from Vault", "path", path)
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}

	return parseKVv2(secret, path)
}

// parseKVv2 unpacks the data/metadata envelope of a KV v2 read
func parseKVv2(secret *api.Secret, path string) (*VaultSecret, error) {
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}

	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}

	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses version value from the types Vault responses decode to
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// stringField returns a string value from a secret
func stringField(secret *VaultSecret, path, key string) (string, error) {
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return strValue, nil
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	return stringField(secret, path, key)
}

// GetStringSliceSecret retrieves a comma-separated string as a slice from Vault
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim(value), nil
}

// vaultLoader applies one secret to the configuration
type vaultLoader struct {
	name  string
	path  string
	apply func(secret *VaultSecret, path string, config *Config, logger *errors.Logger) error
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	logger.Info("Loading secrets from Vault",
		"api_keys_path", config.Vault.Secrets.APIKeys,
		"tls_certs_path", config.Vault.Secrets.TLSCerts,
		"catalog_path", config.Vault.Secrets.Catalog)

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	if err := applySecrets(client, config, logger); err != nil {
		return err
	}

	// Secrets may have changed TLS sources or added a catalog; re-check before use.
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after applying vault secrets: %w", err)
	}
	return nil
}

// applySecrets reads every configured secret path from source
func applySecrets(source secretSource, config *Config, logger *errors.Logger) error {
	loaders := []vaultLoader{
		{name: "API keys", path: config.Vault.Secrets.APIKeys, apply: applyAPIKeys},
		{name: "TLS certificates", path: config.Vault.Secrets.TLSCerts, apply: applyTLSCerts},
		{name: "role catalog", path: config.Vault.Secrets.Catalog, apply: applyCatalog},
	}

	for _, loader := range loaders {
		if loader.path == "" {
			continue
		}

		logger.Debug("Loading "+loader.name+" from Vault", "path", loader.path)
		secret, err := source.GetSecretV2(loader.path)
		if err != nil {
			logger.LogError(err, "Failed to load "+loader.name+" from Vault", "path", loader.path)
			return fmt.Errorf("failed to load %s from vault: %w", loader.name, err)
		}
		if err := loader.apply(secret, loader.path, config, logger); err != nil {
			return err
		}
	}

	logger.Info("Successfully completed applying secrets from Vault")
	return nil
}

func applyAPIKeys(secret *VaultSecret, path string, config *Config, logger *errors.Logger) error {
	value, err := stringField(secret, path, "keys")
	if err != nil {
		return fmt.Errorf("failed to load API keys from vault: %w", err)
	}

	apiKeys := splitAndTrim(value)
	if len(apiKeys) == 0 {
		logger.Warn("No API keys found in Vault", "path", path)
		return nil
	}

	config.Server.APIKeys = apiKeys
	logger.Info("API keys loaded from Vault", "count", len(apiKeys), "version", secret.Version)
	return nil
}

func applyTLSCerts(secret *VaultSecret, path string, config *Config, logger *errors.Logger) error {
	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		if _, found := secret.Data[field]; found {
			return fmt.Errorf("vault TLS configuration error: '%s' field is no longer supported. Store certificate content in '%s' field instead",
				field, strings.TrimSuffix(field, "_file"))
		}
	}

	tlsCfg := &config.Server.TLS
	targets := []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &tlsCfg.CertContent, &tlsCfg.CertFile},
		{"key", &tlsCfg.KeyContent, &tlsCfg.KeyFile},
		{"ca", &tlsCfg.CAContent, &tlsCfg.CAFile},
	}

	loaded := 0
	for _, target := range targets {
		content, ok := secret.Data[target.key].(string)
		if !ok || content == "" {
			continue
		}
		*target.content = content
		// Vault content replaces any file source for the same item.
		*target.file = ""
		loaded++
	}

	logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded, "path", path)
	return nil
}

func applyCatalog(secret *VaultSecret, path string, config *Config, logger *errors.Logger) error {
	content, err := stringField(secret, path, "roles")
	if err != nil {
		return fmt.Errorf("failed to load role catalog from vault: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		logger.Warn("Empty role catalog found in Vault, keeping configured catalog", "path", path)
		return nil
	}

	config.Screening.CatalogContent = content
	config.Screening.CatalogFile = ""
	logger.Info("Role catalog loaded from Vault", "path", path, "version", secret.Version, "bytes", len(content))
	return nil
}
