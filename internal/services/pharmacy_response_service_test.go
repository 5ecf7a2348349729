package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/delivery"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedMessages struct {
	mu   sync.Mutex
	msgs []delivery.Message
}

func (r *recordedMessages) notifier(err error) delivery.Notifier {
	return delivery.NotifierFunc(func(_ context.Context, msg delivery.Message) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.msgs = append(r.msgs, msg)
		return err
	})
}

func (r *recordedMessages) all() []delivery.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delivery.Message(nil), r.msgs...)
}

type responseFixture struct {
	db         *gorm.DB
	svc        services.PharmacyResponseService
	dispatcher *delivery.Dispatcher
	sent       *recordedMessages
}

func newResponseFixture(t *testing.T, deliveryErr error) *responseFixture {
	t.Helper()
	sent := &recordedMessages{}
	dispatcher := delivery.NewDispatcher(sent.notifier(deliveryErr), time.Second)
	return &responseFixture{
		db: helpers.NewTestDB(t),
		svc: services.NewPharmacyResponseService(
			repositories.NewPrescriptionRepository(),
			repositories.NewPharmacyResponseRepository(),
			dispatcher,
		),
		dispatcher: dispatcher,
		sent:       sent,
	}
}

func (f *responseFixture) prescription(t *testing.T, patientID string, status models.PrescriptionStatus) *models.Prescription {
	t.Helper()
	p := &models.Prescription{
		PatientID:    patientID,
		PatientEmail: patientID + "@example.com",
		Title:        "Rx for " + patientID,
		Status:       status,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func offer(medicines ...dto.MedicineOffer) *dto.CreatePharmacyResponseRequest {
	return &dto.CreatePharmacyResponseRequest{Medicines: medicines}
}

func TestPharmacyResponseService_RespondNotifiesPatient(t *testing.T) {
	f := newResponseFixture(t, nil)
	rx := f.prescription(t, "pat-1", models.PrescriptionStatusPending)

	resp, err := f.svc.Respond(context.Background(), f.db, pharmacy("ph-1"), rx.ID, offer(
		dto.MedicineOffer{Name: "Amoxicillin", Quantity: 2, Price: 1500, Available: true},
		dto.MedicineOffer{Name: "Ibuprofen", Quantity: 1, Price: 800, Available: false},
	))
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, "ph-1", resp.PharmacyID)
	assert.Equal(t, 3000.0, resp.TotalPrice)
	assert.Equal(t, "KZT", resp.Currency)
	assert.Equal(t, string(models.PharmacyResponseStatusOffered), resp.Status)
	assert.Len(t, resp.Medicines, 2)

	var stored models.Prescription
	require.NoError(t, f.db.First(&stored, "id = ?", rx.ID).Error)
	assert.Equal(t, models.PrescriptionStatusResponded, stored.Status)

	msgs := f.sent.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "pat-1", msgs[0].UserID)
	assert.Equal(t, "pat-1@example.com", msgs[0].Email)
	assert.Equal(t, models.NotificationTypePharmacy, msgs[0].Type)
	assert.Equal(t, resp.ID, msgs[0].Data["response_id"])
}

func TestPharmacyResponseService_DeliveryFailureKeepsWrite(t *testing.T) {
	f := newResponseFixture(t, errors.New("gateway down"))
	rx := f.prescription(t, "pat-1", models.PrescriptionStatusPending)

	resp, err := f.svc.Respond(context.Background(), f.db, pharmacy("ph-1"), rx.ID, offer(
		dto.MedicineOffer{Name: "Amoxicillin", Quantity: 1, Price: 100, Available: true},
	))
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Len(t, f.sent.all(), 1)

	var count int64
	require.NoError(t, f.db.Model(&models.PharmacyResponse{}).Where("id = ?", resp.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPharmacyResponseService_RespondRejections(t *testing.T) {
	f := newResponseFixture(t, nil)
	ctx := context.Background()
	available := offer(dto.MedicineOffer{Name: "A", Quantity: 1, Price: 1, Available: true})

	_, err := f.svc.Respond(ctx, f.db, patient("pat-1"), "any", available)
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.Respond(ctx, f.db, pharmacy("ph-1"), "missing", available)
	requireAppError(t, err, http.StatusNotFound)

	cancelled := f.prescription(t, "pat-1", models.PrescriptionStatusCancelled)
	_, err = f.svc.Respond(ctx, f.db, pharmacy("ph-1"), cancelled.ID, available)
	requireAppError(t, err, http.StatusNotFound)

	accepted := f.prescription(t, "pat-1", models.PrescriptionStatusAccepted)
	_, err = f.svc.Respond(ctx, f.db, pharmacy("ph-1"), accepted.ID, available)
	requireAppError(t, err, http.StatusConflict)

	pending := f.prescription(t, "pat-1", models.PrescriptionStatusPending)
	_, err = f.svc.Respond(ctx, f.db, pharmacy("ph-1"), pending.ID,
		offer(dto.MedicineOffer{Name: "A", Quantity: 1, Price: 1, Available: false}))
	requireAppError(t, err, http.StatusBadRequest)

	f.dispatcher.Wait()
	assert.Empty(t, f.sent.all())
}

func TestPharmacyResponseService_AcceptClosesPrescription(t *testing.T) {
	f := newResponseFixture(t, nil)
	ctx := context.Background()
	rx := f.prescription(t, "pat-1", models.PrescriptionStatusPending)
	medicine := dto.MedicineOffer{Name: "A", Quantity: 1, Price: 10, Available: true}

	first, err := f.svc.Respond(ctx, f.db, pharmacy("ph-1"), rx.ID, offer(medicine))
	require.NoError(t, err)
	second, err := f.svc.Respond(ctx, f.db, pharmacy("ph-2"), rx.ID, offer(medicine))
	require.NoError(t, err)
	// offer deliveries finish before the accept is dispatched
	f.dispatcher.Wait()

	_, err = f.svc.Accept(ctx, f.db, patient("pat-2"), first.ID)
	requireAppError(t, err, http.StatusNotFound)

	accepted, err := f.svc.Accept(ctx, f.db, patient("pat-1"), first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.PharmacyResponseStatusAccepted), accepted.Status)
	f.dispatcher.Wait()

	var other models.PharmacyResponse
	require.NoError(t, f.db.First(&other, "id = ?", second.ID).Error)
	assert.Equal(t, models.PharmacyResponseStatusDeclined, other.Status)

	var stored models.Prescription
	require.NoError(t, f.db.First(&stored, "id = ?", rx.ID).Error)
	assert.Equal(t, models.PrescriptionStatusAccepted, stored.Status)

	msgs := f.sent.all()
	require.Len(t, msgs, 3)
	last := msgs[2]
	assert.Equal(t, "ph-1", last.UserID)
	assert.Equal(t, models.NotificationTypeOrder, last.Type)

	_, err = f.svc.Accept(ctx, f.db, patient("pat-1"), second.ID)
	requireAppError(t, err, http.StatusConflict)
}

func TestPharmacyResponseService_ListForPrescriptionVisibility(t *testing.T) {
	f := newResponseFixture(t, nil)
	ctx := context.Background()
	rx := f.prescription(t, "pat-1", models.PrescriptionStatusPending)
	medicine := dto.MedicineOffer{Name: "A", Quantity: 1, Price: 10, Available: true}

	_, err := f.svc.Respond(ctx, f.db, pharmacy("ph-1"), rx.ID, offer(medicine))
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.db, pharmacy("ph-2"), rx.ID, offer(medicine))
	require.NoError(t, err)
	f.dispatcher.Wait()

	owner, err := f.svc.ListForPrescription(ctx, f.db, patient("pat-1"), rx.ID)
	require.NoError(t, err)
	assert.Len(t, owner, 2)

	admin, err := f.svc.ListForPrescription(ctx, f.db, &auth.Claims{UserID: "adm", Role: auth.RoleAdmin}, rx.ID)
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	own, err := f.svc.ListForPrescription(ctx, f.db, pharmacy("ph-2"), rx.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "ph-2", own[0].PharmacyID)

	_, err = f.svc.ListForPrescription(ctx, f.db, patient("pat-2"), rx.ID)
	requireAppError(t, err, http.StatusNotFound)
}
