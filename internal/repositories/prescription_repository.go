package repositories

import (
	"errors"
	"time"

	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"

	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *models.Prescription) error
	FindByID(db *gorm.DB, id string) (*models.Prescription, error)
	// FindByIDForPatient is owner-scoped: another patient's id is a miss.
	FindByIDForPatient(db *gorm.DB, id, patientID string) (*models.Prescription, error)
	// ListByPatient filters by status when status is non-empty.
	ListByPatient(db *gorm.DB, patientID string, status models.PrescriptionStatus, page, pageSize int) ([]models.Prescription, int64, error)
	// ListOpen returns prescriptions pharmacies can still respond to.
	ListOpen(db *gorm.DB, page, pageSize int) ([]models.Prescription, int64, error)
	// UpdateStatus moves a prescription to status only when its current
	// status is one of from. Returns rows affected.
	UpdateStatus(db *gorm.DB, id string, status models.PrescriptionStatus, from ...models.PrescriptionStatus) (int64, error)
	CancelForPatient(db *gorm.DB, id, patientID string) (int64, error)
}

type prescriptionRepository struct{}

func NewPrescriptionRepository() PrescriptionRepository {
	return &prescriptionRepository{}
}

const prescriptionsTable = "prescriptions"

var openStatuses = []models.PrescriptionStatus{
	models.PrescriptionStatusPending,
	models.PrescriptionStatusResponded,
}

func (r *prescriptionRepository) Create(db *gorm.DB, prescription *models.Prescription) error {
	start := time.Now()
	err := translateError(db.Create(prescription).Error)
	logger.DBLog("create", prescriptionsTable, time.Since(start), err)
	return err
}

func (r *prescriptionRepository) FindByID(db *gorm.DB, id string) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := db.Where("id = ?", id).First(&prescription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) FindByIDForPatient(db *gorm.DB, id, patientID string) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := db.Where("id = ? AND patient_id = ?", id, patientID).First(&prescription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) ListByPatient(db *gorm.DB, patientID string, status models.PrescriptionStatus, page, pageSize int) ([]models.Prescription, int64, error) {
	byPatient := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("patient_id = ?", patientID)
		if status != "" {
			tx = tx.Where("status = ?", status)
		}
		return tx
	}

	var total int64
	if err := db.Model(&models.Prescription{}).Scopes(byPatient).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	prescriptions := make([]models.Prescription, 0)
	err := db.Scopes(byPatient).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&prescriptions).Error
	return prescriptions, total, err
}

func (r *prescriptionRepository) ListOpen(db *gorm.DB, page, pageSize int) ([]models.Prescription, int64, error) {
	var total int64
	if err := db.Model(&models.Prescription{}).
		Where("status IN ?", openStatuses).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	prescriptions := make([]models.Prescription, 0)
	err := db.Where("status IN ?", openStatuses).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&prescriptions).Error
	return prescriptions, total, err
}

func (r *prescriptionRepository) UpdateStatus(db *gorm.DB, id string, status models.PrescriptionStatus, from ...models.PrescriptionStatus) (int64, error) {
	query := db.Model(&models.Prescription{}).Where("id = ?", id)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}
	result := query.Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *prescriptionRepository) CancelForPatient(db *gorm.DB, id, patientID string) (int64, error) {
	result := db.Model(&models.Prescription{}).
		Where("id = ? AND patient_id = ? AND status IN ?", id, patientID, openStatuses).
		Update("status", models.PrescriptionStatusCancelled)
	return result.RowsAffected, result.Error
}
