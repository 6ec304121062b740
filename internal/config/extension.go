package config

import (
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// ExtensionConfig holds the shared secret the browser extension presents in
// the x-api-key header and the user its requests act on behalf of.
type ExtensionConfig struct {
	APIKey        string // plaintext key; ignored when APIKeyHash is set
	APIKeyHash    string // bcrypt hash of the key
	DefaultUserID uuid.UUID
	Hasher        *KeyHashConfig
}

// NewExtensionConfig reads EXTENSION_API_KEY or EXTENSION_API_KEY_HASH (one
// is required) and DEFAULT_USER_ID (required UUID).
func NewExtensionConfig() (*ExtensionConfig, error) {
	config := &ExtensionConfig{
		APIKey:     os.Getenv("EXTENSION_API_KEY"),
		APIKeyHash: os.Getenv("EXTENSION_API_KEY_HASH"),
	}

	rawUserID := os.Getenv("DEFAULT_USER_ID")
	if rawUserID == "" {
		return nil, fmt.Errorf("DEFAULT_USER_ID is required but not set")
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_USER_ID: %v", err)
	}
	config.DefaultUserID = userID

	if config.APIKeyHash != "" {
		hasher, err := NewKeyHashConfig()
		if err != nil {
			return nil, err
		}
		config.Hasher = hasher
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *ExtensionConfig) normalize() error {
	if c.APIKey == "" && c.APIKeyHash == "" {
		return fmt.Errorf("EXTENSION_API_KEY or EXTENSION_API_KEY_HASH is required but not set")
	}
	if c.DefaultUserID == uuid.Nil {
		return fmt.Errorf("DEFAULT_USER_ID cannot be the nil UUID")
	}
	if c.APIKeyHash != "" && c.Hasher == nil {
		c.Hasher = &KeyHashConfig{BcryptCost: 12}
	}
	return nil
}

// VerifyAPIKey reports whether key is the configured extension key. An
// empty key never matches.
func (c *ExtensionConfig) VerifyAPIKey(key string) bool {
	if key == "" {
		return false
	}
	if c.APIKeyHash != "" {
		return c.Hasher.VerifyKey(key, c.APIKeyHash)
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(c.APIKey)) == 1
}
