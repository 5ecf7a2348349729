package auth

import "errors"

const (
	RolePatient  = "patient"
	RolePharmacy = "pharmacy"
	RoleAdmin    = "admin"
)

// ValidateRole accepts only the roles this service authorizes against.
func ValidateRole(role string) error {
	switch role {
	case RolePatient, RolePharmacy, RoleAdmin:
		return nil
	default:
		return errors.New("invalid role")
	}
}

func IsPharmacy(claims *Claims) bool {
	return claims != nil && claims.Role == RolePharmacy
}

func IsPatient(claims *Claims) bool {
	return claims != nil && claims.Role == RolePatient
}

func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == RoleAdmin
}
