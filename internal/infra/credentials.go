package infra

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Credential is the resolved API key pair. The secret is kept as bytes
// so it can be wiped after the signer takes ownership; it must never
// be logged or echoed.
type Credential struct {
	APIKey    string
	APISecret []byte
}

// MissingCredentialError reports an unresolvable credential field.
type MissingCredentialError struct {
	Field string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s (set via flag, config file, .env or environment)", e.Field)
}

// CredentialSource is one layer of key material (CLI flags, config file,
// or process environment).
type CredentialSource struct {
	APIKey    string
	APISecret string
}

// ResolveCredential merges credential layers field by field with
// priority cli > file > env.
func ResolveCredential(cli, file, env CredentialSource) (Credential, error) {
	key := firstNonEmpty(cli.APIKey, file.APIKey, env.APIKey)
	if key == "" {
		return Credential{}, &MissingCredentialError{Field: "api key"}
	}
	secret := firstNonEmpty(cli.APISecret, file.APISecret, env.APISecret)
	if secret == "" {
		return Credential{}, &MissingCredentialError{Field: "api secret"}
	}
	return Credential{APIKey: key, APISecret: []byte(secret)}, nil
}

// EnvCredentialSource reads the BINANCE_API_KEY / BINANCE_API_SECRET
// environment variables. LoadDotEnv should run first so a local .env
// file is reflected here as well.
func EnvCredentialSource() CredentialSource {
	return CredentialSource{
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		APISecret: os.Getenv("BINANCE_API_SECRET"),
	}
}

// LoadDotEnv loads a local .env file into the process environment.
// A missing file is fine; existing environment variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
