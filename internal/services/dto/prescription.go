package dto

import "time"

// CreatePrescriptionRequest binds from JSON or multipart form. The image, if
// any, is read separately from the "image" form field.
type CreatePrescriptionRequest struct {
	Title string `json:"title" form:"title" validate:"notblank,max=200"`
	Notes string `json:"notes" form:"notes" validate:"max=2000"`
}

type ListPrescriptionsQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,is-prescription-status"`
}

type PrescriptionResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []*PrescriptionResponse `json:"prescriptions"`
	Pagination
}
