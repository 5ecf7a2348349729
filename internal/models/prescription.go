package models

type Prescription struct {
	BaseModel
	PatientID    string `gorm:"type:varchar(64);not null;index"`
	PatientEmail string `gorm:"type:varchar(255)"`
	Title        string `gorm:"not null"`
	Notes        string
	ImagePath    string
	Status       PrescriptionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	Responses []PharmacyResponse `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
}
