package auth

import (
	"crypto/subtle"

	"pharmacy_backend/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
)

// ServiceKeyVerifier checks the server-held credential that authorizes
// cross-user notification writes. It never looks at user sessions.
type ServiceKeyVerifier struct {
	plain string
	hash  []byte
}

// NewServiceKeyVerifier accepts a plaintext key, a bcrypt hash of it, or both.
// The hash wins when both are set.
func NewServiceKeyVerifier(plain, hash string) *ServiceKeyVerifier {
	return &ServiceKeyVerifier{plain: plain, hash: []byte(hash)}
}

func (v *ServiceKeyVerifier) Configured() bool {
	return v != nil && (v.plain != "" || len(v.hash) > 0)
}

// Verify returns nil for a matching key, otherwise an AppError that separates
// caller fault (401 missing, 403 wrong) from server misconfiguration (500).
func (v *ServiceKeyVerifier) Verify(presented string) error {
	if !v.Configured() {
		return apperrors.ErrServiceCredentialNotConfigured()
	}
	if presented == "" {
		return apperrors.ErrServiceCredentialMissing()
	}

	if len(v.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(v.hash, []byte(presented)); err != nil {
			return apperrors.ErrServiceCredentialInvalid()
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(v.plain), []byte(presented)) != 1 {
		return apperrors.ErrServiceCredentialInvalid()
	}
	return nil
}

// HashServiceKey produces the value for notifications.service_key_hash.
func HashServiceKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}
