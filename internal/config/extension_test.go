package config

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "3f1c2a9e-8d7b-4c55-9a1e-0b2d4f6a8c10"

func TestNewExtensionConfig(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		hash    string
		userID  string
		wantErr string
	}{
		{name: "plain key", key: "secret", userID: testUserID},
		{name: "hashed key", hash: "$2a$10$abcdefghijklmnopqrstuu", userID: testUserID},
		{name: "no key", userID: testUserID, wantErr: "EXTENSION_API_KEY"},
		{name: "no user", key: "secret", wantErr: "DEFAULT_USER_ID is required"},
		{name: "bad user", key: "secret", userID: "not-a-uuid", wantErr: "invalid DEFAULT_USER_ID"},
		{name: "nil user", key: "secret", userID: uuid.Nil.String(), wantErr: "nil UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EXTENSION_API_KEY", tt.key)
			t.Setenv("EXTENSION_API_KEY_HASH", tt.hash)
			t.Setenv("DEFAULT_USER_ID", tt.userID)
			t.Setenv("BCRYPT_COST", "")

			cfg, err := NewExtensionConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testUserID, cfg.DefaultUserID.String())
			if tt.hash != "" {
				assert.NotNil(t, cfg.Hasher)
			}
		})
	}
}

func TestExtensionConfig_VerifyAPIKey(t *testing.T) {
	plain := &ExtensionConfig{APIKey: "secret"}
	assert.True(t, plain.VerifyAPIKey("secret"))
	assert.False(t, plain.VerifyAPIKey("Secret"))
	assert.False(t, plain.VerifyAPIKey(""))

	hasher := &KeyHashConfig{BcryptCost: 10}
	hash, err := hasher.HashKey("secret")
	require.NoError(t, err)

	hashed := &ExtensionConfig{APIKeyHash: hash, Hasher: hasher}
	assert.True(t, hashed.VerifyAPIKey("secret"))
	assert.False(t, hashed.VerifyAPIKey("other"))
}

func TestExtensionConfig_EmptyConfiguredKeyNeverMatches(t *testing.T) {
	cfg := &ExtensionConfig{}
	assert.False(t, cfg.VerifyAPIKey(""))
	assert.False(t, cfg.VerifyAPIKey("anything"))
}
