// Package credential decides whether a supplied secret matches a stored
// one. Two storage formats coexist: bcrypt hashes written by every
// account-creation path, and legacy plaintext secrets carried by the
// pre-seeded demo accounts. The format is read off the stored value's
// own prefix rather than a schema field, so no migration step is needed.
package credential

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when the config does not override it.
const DefaultCost = 10

// Format tags how a stored credential is encoded.
type Format int

const (
	FormatPlaintext Format = iota
	FormatHashed
)

// Credential is a stored secret tagged with its detected format.
type Credential struct {
	Format Format
	Value  string
}

// Parse inspects a stored value and tags it. Bcrypt hashes always start
// with "$2" ($2a$, $2b$, $2y$); anything else is treated as legacy
// plaintext.
func Parse(stored string) Credential {
	if strings.HasPrefix(stored, "$2") {
		return Credential{Format: FormatHashed, Value: stored}
	}
	return Credential{Format: FormatPlaintext, Value: stored}
}

// Verify reports whether candidate matches the stored secret. Hashed
// credentials use bcrypt's constant-time comparison; plaintext ones use
// exact equality. An account with no stored secret never verifies, and a
// mismatch is never an error.
func (c Credential) Verify(candidate string) bool {
	if c.Value == "" {
		return false
	}
	if c.Format == FormatHashed {
		return bcrypt.CompareHashAndPassword([]byte(c.Value), []byte(candidate)) == nil
	}
	return c.Value == candidate
}

// Hash encodes a plaintext secret for storage at the given bcrypt cost.
func Hash(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
