package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/delivery"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultCurrency = "KZT"

// PharmacyResponseService handles pharmacy offers on prescriptions. After a
// write commits, the other party is notified through the dispatcher; delivery
// failures never change the result of the write.
type PharmacyResponseService interface {
	Respond(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string, req *dto.CreatePharmacyResponseRequest) (*dto.PharmacyResponseResponse, error)
	ListForPrescription(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) ([]*dto.PharmacyResponseResponse, error)
	Accept(ctx context.Context, db *gorm.DB, caller *auth.Claims, responseID string) (*dto.PharmacyResponseResponse, error)
}

type pharmacyResponseService struct {
	prescriptions repositories.PrescriptionRepository
	responses     repositories.PharmacyResponseRepository
	dispatcher    *delivery.Dispatcher
}

func NewPharmacyResponseService(
	prescriptions repositories.PrescriptionRepository,
	responses repositories.PharmacyResponseRepository,
	dispatcher *delivery.Dispatcher,
) PharmacyResponseService {
	return &pharmacyResponseService{
		prescriptions: prescriptions,
		responses:     responses,
		dispatcher:    dispatcher,
	}
}

func (s *pharmacyResponseService) Respond(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string, req *dto.CreatePharmacyResponseRequest) (*dto.PharmacyResponseResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if !auth.IsPharmacy(caller) {
		return nil, apperrors.ErrInsufficientPermissions()
	}

	offers, total, err := priceOffers(req.Medicines)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	prescription, err := s.prescriptions.FindByID(tx, prescriptionID)
	if err != nil {
		return nil, handlePrescriptionError(err)
	}
	switch {
	case prescription.Status == models.PrescriptionStatusCancelled:
		return nil, apperrors.ErrPrescriptionNotFound()
	case !prescription.Status.AcceptsResponses():
		return nil, apperrors.ErrPrescriptionClosed()
	}

	response := &models.PharmacyResponse{
		PrescriptionID: prescription.ID,
		PharmacyID:     caller.UserID,
		PharmacyName:   caller.Name,
		Medicines:      datatypes.NewJSONSlice(offers),
		TotalPrice:     total,
		Currency:       currency,
		Note:           strings.TrimSpace(req.Note),
		Status:         models.PharmacyResponseStatusOffered,
	}
	if err := s.responses.Create(tx, response); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if _, err := s.prescriptions.UpdateStatus(tx, prescription.ID, models.PrescriptionStatusResponded, models.PrescriptionStatusPending); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "pharmacy responded", "prescription_id", prescription.ID, "response_id", response.ID)

	pharmacyName := caller.Name
	if pharmacyName == "" {
		pharmacyName = "A pharmacy"
	}
	s.dispatcher.Dispatch(ctx, delivery.Message{
		UserID: prescription.PatientID,
		Email:  prescription.PatientEmail,
		Title:  "New offer for your prescription",
		Body:   fmt.Sprintf("%s responded to \"%s\" with a total of %.2f %s.", pharmacyName, prescription.Title, total, currency),
		Type:   models.NotificationTypePharmacy,
		Data: map[string]interface{}{
			"prescription_id": prescription.ID,
			"response_id":     response.ID,
		},
	})

	return buildPharmacyResponse(response), nil
}

// ListForPrescription shows every offer to the owning patient and admins,
// and only its own offers to a pharmacy.
func (s *pharmacyResponseService) ListForPrescription(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) ([]*dto.PharmacyResponseResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}

	prescription, err := s.prescriptions.FindByID(db, prescriptionID)
	if err != nil {
		return nil, handlePrescriptionError(err)
	}
	if !canViewPrescription(caller, prescription) {
		return nil, apperrors.ErrPrescriptionNotFound()
	}

	rows, err := s.responses.ListByPrescription(db, prescription.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	ownOnly := auth.IsPharmacy(caller) && prescription.PatientID != caller.UserID
	items := make([]*dto.PharmacyResponseResponse, 0, len(rows))
	for i := range rows {
		if ownOnly && rows[i].PharmacyID != caller.UserID {
			continue
		}
		items = append(items, buildPharmacyResponse(&rows[i]))
	}
	return items, nil
}

// Accept closes the prescription on one offer and declines the rest. Only the
// owning patient can accept; for anyone else the response does not exist.
func (s *pharmacyResponseService) Accept(ctx context.Context, db *gorm.DB, caller *auth.Claims, responseID string) (*dto.PharmacyResponseResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if !auth.IsPatient(caller) {
		return nil, apperrors.ErrInsufficientPermissions()
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	response, err := s.responses.FindByID(tx, responseID)
	if err != nil {
		return nil, handleResponseError(err)
	}
	prescription, err := s.prescriptions.FindByIDForPatient(tx, response.PrescriptionID, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrPrescriptionNotFound) {
			return nil, apperrors.ErrResponseNotFound()
		}
		return nil, apperrors.DatabaseError(err)
	}
	if !prescription.Status.AcceptsResponses() {
		return nil, apperrors.ErrPrescriptionClosed()
	}
	if response.Status != models.PharmacyResponseStatusOffered {
		return nil, apperrors.ErrInvalidStatus("pharmacy_response", "Only offered responses can be accepted")
	}

	if err := s.responses.UpdateStatus(tx, response.ID, models.PharmacyResponseStatusAccepted); err != nil {
		return nil, handleResponseError(err)
	}
	if _, err := s.responses.DeclineOthers(tx, prescription.ID, response.ID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	affected, err := s.prescriptions.UpdateStatus(tx, prescription.ID, models.PrescriptionStatusAccepted,
		models.PrescriptionStatusPending, models.PrescriptionStatusResponded)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if affected == 0 {
		return nil, apperrors.ErrPrescriptionClosed()
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	response.Status = models.PharmacyResponseStatusAccepted

	logger.CtxInfo(ctx, "pharmacy response accepted", "prescription_id", prescription.ID, "response_id", response.ID)

	s.dispatcher.Dispatch(ctx, delivery.Message{
		UserID: response.PharmacyID,
		Title:  "Your offer was accepted",
		Body:   fmt.Sprintf("The patient accepted your offer for \"%s\".", prescription.Title),
		Type:   models.NotificationTypeOrder,
		Data: map[string]interface{}{
			"prescription_id": prescription.ID,
			"response_id":     response.ID,
		},
	})

	return buildPharmacyResponse(response), nil
}

// priceOffers normalizes the offer lines and totals the available ones.
func priceOffers(in []dto.MedicineOffer) ([]models.MedicineOffer, float64, error) {
	if len(in) == 0 {
		return nil, 0, apperrors.ValidationError(map[string]string{"medicines": "This field is required"})
	}

	offers := make([]models.MedicineOffer, 0, len(in))
	var total float64
	available := 0
	for i, m := range in {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, 0, apperrors.ValidationError(map[string]string{fmt.Sprintf("medicines[%d].name", i): "This field is required"})
		}
		if m.Quantity < 1 || m.Price < 0 {
			return nil, 0, apperrors.ValidationError(map[string]string{fmt.Sprintf("medicines[%d]", i): "Quantity must be positive and price non-negative"})
		}
		offers = append(offers, models.MedicineOffer{
			Name:      name,
			Quantity:  m.Quantity,
			Price:     m.Price,
			Available: m.Available,
		})
		if m.Available {
			available++
			total += m.Price * float64(m.Quantity)
		}
	}
	if available == 0 {
		return nil, 0, apperrors.ErrNoAvailableMedicines()
	}
	return offers, math.Round(total*100) / 100, nil
}

func buildPharmacyResponse(r *models.PharmacyResponse) *dto.PharmacyResponseResponse {
	medicines := make([]dto.MedicineOffer, 0, len(r.Medicines))
	for _, m := range r.Medicines {
		medicines = append(medicines, dto.MedicineOffer{
			Name:      m.Name,
			Quantity:  m.Quantity,
			Price:     m.Price,
			Available: m.Available,
		})
	}
	return &dto.PharmacyResponseResponse{
		ID:             r.ID,
		PrescriptionID: r.PrescriptionID,
		PharmacyID:     r.PharmacyID,
		PharmacyName:   r.PharmacyName,
		Medicines:      medicines,
		TotalPrice:     r.TotalPrice,
		Currency:       r.Currency,
		Note:           r.Note,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

func handleResponseError(err error) error {
	if errors.Is(err, repositories.ErrPharmacyResponseNotFound) {
		return apperrors.ErrResponseNotFound()
	}
	return apperrors.DatabaseError(err)
}
