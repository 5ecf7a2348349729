package models

type PrescriptionStatus string
type PharmacyResponseStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusResponded PrescriptionStatus = "responded"
	PrescriptionStatusAccepted  PrescriptionStatus = "accepted"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"

	PharmacyResponseStatusOffered  PharmacyResponseStatus = "offered"
	PharmacyResponseStatusAccepted PharmacyResponseStatus = "accepted"
	PharmacyResponseStatusDeclined PharmacyResponseStatus = "declined"
)

// AcceptsResponses reports whether pharmacies may still respond.
func (s PrescriptionStatus) AcceptsResponses() bool {
	return s == PrescriptionStatusPending || s == PrescriptionStatusResponded
}
