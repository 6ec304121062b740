package config

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// KeyHashConfig controls how extension API keys are hashed for storage in
// EXTENSION_API_KEY_HASH.
type KeyHashConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewKeyHashConfig reads BCRYPT_COST (default: 12) and optionally
// API_KEY_PEPPER.
func NewKeyHashConfig() (*KeyHashConfig, error) {
	cost, err := intEnv("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}

	config := &KeyHashConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *KeyHashConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashKey hashes an API key using bcrypt.
func (c *KeyHashConfig) HashKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("API key cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey reports whether key matches storedHash.
func (c *KeyHashConfig) VerifyKey(key, storedHash string) bool {
	if key == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(key+c.Pepper)) == nil
}
