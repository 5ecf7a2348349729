package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories wrapping lower-level errors
// =========================================================================

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Auth
// =========================================================================

func ErrUnauthenticated() *AppError {
	return NewUnauthorizedError("User not authenticated")
}

func ErrInvalidSession() *AppError {
	return New(CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized)
}

func ErrSessionExpired() *AppError {
	return New(CodeTokenExpired, "auth", "Session expired", http.StatusUnauthorized)
}

func ErrInsufficientPermissions() *AppError {
	return New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)
}

// ErrServiceCredentialMissing - privileged route called without a service key.
func ErrServiceCredentialMissing() *AppError {
	return New(CodeUnauthorized, "service_auth", "Service credential required", http.StatusUnauthorized)
}

// ErrServiceCredentialInvalid - service key present but does not match.
func ErrServiceCredentialInvalid() *AppError {
	return New(CodeForbidden, "service_auth", "Invalid service credential", http.StatusForbidden)
}

// ErrServiceCredentialNotConfigured - the server has no key to compare against.
func ErrServiceCredentialNotConfigured() *AppError {
	return NewMisconfiguredError("service_auth", "Service credential is not configured")
}

// =========================================================================
// Notifications
// =========================================================================

func ErrNotificationFieldRequired(field string) *AppError {
	return ValidationError(map[string]string{field: "This field is required"})
}

// =========================================================================
// Prescriptions & pharmacy responses
// =========================================================================

func ErrPrescriptionNotFound() *AppError {
	return New(CodeNotFound, "prescription", "Prescription not found", http.StatusNotFound)
}

func ErrPrescriptionClosed() *AppError {
	return New(CodeInvalidStatus, "prescription", "Prescription is no longer accepting responses", http.StatusConflict)
}

func ErrResponseNotFound() *AppError {
	return New(CodeNotFound, "pharmacy_response", "Pharmacy response not found", http.StatusNotFound)
}

func ErrNoAvailableMedicines() *AppError {
	return New(CodeValidationFailed, "pharmacy_response", "At least one medicine must be available", http.StatusBadRequest)
}

func ErrImageTooLarge() *AppError {
	return New(CodeValidationFailed, "prescription", "Prescription image exceeds the allowed size", http.StatusRequestEntityTooLarge)
}

func ErrInvalidImageType() *AppError {
	return New(CodeValidationFailed, "prescription", "Prescription image type is not allowed", http.StatusUnsupportedMediaType)
}
