package repositories

import (
	"errors"
	"time"

	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"

	"gorm.io/gorm"
)

type PharmacyResponseRepository interface {
	Create(db *gorm.DB, response *models.PharmacyResponse) error
	FindByID(db *gorm.DB, id string) (*models.PharmacyResponse, error)
	ListByPrescription(db *gorm.DB, prescriptionID string) ([]models.PharmacyResponse, error)
	UpdateStatus(db *gorm.DB, id string, status models.PharmacyResponseStatus) error
	// DeclineOthers marks every other offered response on the prescription as declined.
	DeclineOthers(db *gorm.DB, prescriptionID, acceptedID string) (int64, error)
}

type pharmacyResponseRepository struct{}

func NewPharmacyResponseRepository() PharmacyResponseRepository {
	return &pharmacyResponseRepository{}
}

const pharmacyResponsesTable = "pharmacy_responses"

func (r *pharmacyResponseRepository) Create(db *gorm.DB, response *models.PharmacyResponse) error {
	start := time.Now()
	err := translateError(db.Create(response).Error)
	logger.DBLog("create", pharmacyResponsesTable, time.Since(start), err)
	return err
}

func (r *pharmacyResponseRepository) FindByID(db *gorm.DB, id string) (*models.PharmacyResponse, error) {
	var response models.PharmacyResponse
	if err := db.Where("id = ?", id).First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPharmacyResponseNotFound
		}
		return nil, err
	}
	return &response, nil
}

func (r *pharmacyResponseRepository) ListByPrescription(db *gorm.DB, prescriptionID string) ([]models.PharmacyResponse, error) {
	responses := make([]models.PharmacyResponse, 0)
	err := db.Where("prescription_id = ?", prescriptionID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

func (r *pharmacyResponseRepository) UpdateStatus(db *gorm.DB, id string, status models.PharmacyResponseStatus) error {
	result := db.Model(&models.PharmacyResponse{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPharmacyResponseNotFound
	}
	return nil
}

func (r *pharmacyResponseRepository) DeclineOthers(db *gorm.DB, prescriptionID, acceptedID string) (int64, error) {
	result := db.Model(&models.PharmacyResponse{}).
		Where("prescription_id = ? AND id <> ? AND status = ?", prescriptionID, acceptedID, models.PharmacyResponseStatusOffered).
		Update("status", models.PharmacyResponseStatusDeclined)
	return result.RowsAffected, result.Error
}
