package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type CredentialSource string

const (
	CredentialSourceSetting     CredentialSource = "setting"
	CredentialSourceEnvironment CredentialSource = "environment"
)

type CredentialStatus string

const (
	CredentialConfigured CredentialStatus = "configured"
	CredentialMissing    CredentialStatus = "missing"
	CredentialInvalid    CredentialStatus = "invalid"
)

// Credential is a resolved provider API key. Value must never be logged; use Fingerprint.
type Credential struct {
	Value  string
	Source CredentialSource
}

func (c Credential) IsZero() bool {
	return c.Value == ""
}

// Fingerprint returns the first four bytes of the key's SHA-256 in hex.
func (c Credential) Fingerprint() string {
	if c.Value == "" {
		return "none"
	}

	sum := sha256.Sum256([]byte(c.Value))
	return hex.EncodeToString(sum[:4])
}

// String keeps credentials out of fmt verbs and log fields.
func (c Credential) String() string {
	if c.Value == "" {
		return "[not set]"
	}

	return fmt.Sprintf("[REDACTED source=%s fingerprint=%s]", c.Source, c.Fingerprint())
}
