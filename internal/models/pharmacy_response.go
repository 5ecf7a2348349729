package models

import "gorm.io/datatypes"

// MedicineOffer is one line of a pharmacy response, stored inside Medicines.
type MedicineOffer struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

type PharmacyResponse struct {
	BaseModel
	PrescriptionID string `gorm:"type:uuid;not null;index"`
	PharmacyID     string `gorm:"type:varchar(64);not null;index"`
	PharmacyName   string
	Medicines      datatypes.JSONSlice[MedicineOffer]
	TotalPrice     float64
	Currency       string `gorm:"type:varchar(3);not null;default:'KZT'"`
	Note           string
	Status         PharmacyResponseStatus `gorm:"type:varchar(20);not null;default:'offered'"`
}
