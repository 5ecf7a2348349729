package validator

import (
	"log"
	"regexp"
	"strings"

	"pharmacy_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var notificationTypePattern = regexp.MustCompile(`^[a-z0-9_]{1,50}$`)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// whitespace-only strings count as missing
	mustRegister("notblank", validateNotBlank)

	mustRegister("notification-type", validateNotificationType)
	mustRegister("is-prescription-status", validatePrescriptionStatus)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidNotificationType reports whether t is an acceptable notification type slug.
func ValidNotificationType(t string) bool {
	return notificationTypePattern.MatchString(t)
}

func validateNotificationType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // defaulted by the service
	}
	return ValidNotificationType(value)
}

func validatePrescriptionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PrescriptionStatus(value) {
	case models.PrescriptionStatusPending, models.PrescriptionStatusResponded,
		models.PrescriptionStatusAccepted, models.PrescriptionStatusCancelled:
		return true
	default:
		return false
	}
}
