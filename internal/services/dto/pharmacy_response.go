package dto

import "time"

type MedicineOffer struct {
	Name      string  `json:"name" validate:"notblank,max=200"`
	Quantity  int     `json:"quantity" validate:"min=1"`
	Price     float64 `json:"price" validate:"min=0"`
	Available bool    `json:"available"`
}

type CreatePharmacyResponseRequest struct {
	Medicines []MedicineOffer `json:"medicines" validate:"required,min=1,max=100,dive"`
	Currency  string          `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Note      string          `json:"note,omitempty" validate:"max=1000"`
}

type PharmacyResponseResponse struct {
	ID             string          `json:"id"`
	PrescriptionID string          `json:"prescription_id"`
	PharmacyID     string          `json:"pharmacy_id"`
	PharmacyName   string          `json:"pharmacy_name,omitempty"`
	Medicines      []MedicineOffer `json:"medicines"`
	TotalPrice     float64         `json:"total_price"`
	Currency       string          `json:"currency"`
	Note           string          `json:"note,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
