package services_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/internal/storage"
	"pharmacy_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func patient(id string) *auth.Claims {
	return &auth.Claims{UserID: id, Role: auth.RolePatient, Email: id + "@example.com"}
}

func pharmacy(id string) *auth.Claims {
	return &auth.Claims{UserID: id, Role: auth.RolePharmacy, Name: "Pharmacy " + id}
}

// fileHeader builds a real *multipart.FileHeader the way gin would hand it over.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func newPrescriptionService(t *testing.T, policy services.ImagePolicy) (services.PrescriptionService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: dir, BaseURL: "/uploads"})
	require.NoError(t, err)
	return services.NewPrescriptionService(repositories.NewPrescriptionRepository(), store, policy), dir
}

func TestPrescriptionService_UploadStoresImage(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, dir := newPrescriptionService(t, services.ImagePolicy{MaxSize: 1 << 20})

	created, err := svc.Upload(context.Background(), db, patient("pat-1"),
		&dto.CreatePrescriptionRequest{Title: "Antibiotics", Notes: "twice a day"},
		fileHeader(t, "scan.png", pngHeader))
	require.NoError(t, err)

	assert.Equal(t, "pat-1", created.PatientID)
	assert.Equal(t, string(models.PrescriptionStatusPending), created.Status)
	require.True(t, strings.HasPrefix(created.ImageURL, "/uploads/prescriptions/pat-1/"), created.ImageURL)
	assert.True(t, strings.HasSuffix(created.ImageURL, ".png"))

	key := strings.TrimPrefix(created.ImageURL, "/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	var row models.Prescription
	require.NoError(t, db.First(&row, "id = ?", created.ID).Error)
	assert.Equal(t, "pat-1@example.com", row.PatientEmail)
	assert.Equal(t, key, row.ImagePath)
}

func TestPrescriptionService_UploadRejectsBadImages(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newPrescriptionService(t, services.ImagePolicy{MaxSize: 16})
	ctx := context.Background()
	req := &dto.CreatePrescriptionRequest{Title: "Rx"}

	_, err := svc.Upload(ctx, db, patient("pat-1"), req, fileHeader(t, "scan.png", pngHeader))
	requireAppError(t, err, http.StatusRequestEntityTooLarge)

	_, err = svc.Upload(ctx, db, patient("pat-1"), req, fileHeader(t, "notes.txt", []byte("plain text")))
	requireAppError(t, err, http.StatusUnsupportedMediaType)

	var count int64
	require.NoError(t, db.Model(&models.Prescription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPrescriptionService_UploadRequiresPatient(t *testing.T) {
	svc, _ := newPrescriptionService(t, services.ImagePolicy{})

	_, err := svc.Upload(context.Background(), nil, pharmacy("ph-1"), &dto.CreatePrescriptionRequest{Title: "Rx"}, nil)
	requireAppError(t, err, http.StatusForbidden)

	_, err = svc.Upload(context.Background(), nil, nil, &dto.CreatePrescriptionRequest{Title: "Rx"}, nil)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestPrescriptionService_GetVisibility(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newPrescriptionService(t, services.ImagePolicy{})
	ctx := context.Background()

	created, err := svc.Upload(ctx, db, patient("pat-1"), &dto.CreatePrescriptionRequest{Title: "Rx"}, nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, db, patient("pat-1"), created.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, db, pharmacy("ph-1"), created.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, db, patient("pat-2"), created.ID)
	requireAppError(t, err, http.StatusNotFound)
	_, err = svc.Get(ctx, db, patient("pat-1"), "missing")
	requireAppError(t, err, http.StatusNotFound)
}

func TestPrescriptionService_ListsAreScoped(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newPrescriptionService(t, services.ImagePolicy{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, db, patient("pat-1"), &dto.CreatePrescriptionRequest{Title: "mine"}, nil)
	require.NoError(t, err)
	other, err := svc.Upload(ctx, db, patient("pat-2"), &dto.CreatePrescriptionRequest{Title: "theirs"}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, db, patient("pat-2"), other.ID))

	mine, err := svc.ListMine(ctx, db, patient("pat-1"), "", 1, 20)
	require.NoError(t, err)
	require.Len(t, mine.Prescriptions, 1)
	assert.Equal(t, "mine", mine.Prescriptions[0].Title)

	cancelled, err := svc.ListMine(ctx, db, patient("pat-2"), string(models.PrescriptionStatusCancelled), 1, 20)
	require.NoError(t, err)
	assert.Len(t, cancelled.Prescriptions, 1)
	pending, err := svc.ListMine(ctx, db, patient("pat-2"), string(models.PrescriptionStatusPending), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, pending.Prescriptions)

	open, err := svc.ListOpen(ctx, db, pharmacy("ph-1"), 1, 20)
	require.NoError(t, err)
	require.Len(t, open.Prescriptions, 1)
	assert.Equal(t, "mine", open.Prescriptions[0].Title)

	_, err = svc.ListOpen(ctx, db, patient("pat-1"), 1, 20)
	requireAppError(t, err, http.StatusForbidden)
}

func TestPrescriptionService_Cancel(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newPrescriptionService(t, services.ImagePolicy{})
	ctx := context.Background()

	created, err := svc.Upload(ctx, db, patient("pat-1"), &dto.CreatePrescriptionRequest{Title: "Rx"}, nil)
	require.NoError(t, err)

	requireAppError(t, svc.Cancel(ctx, db, patient("pat-2"), created.ID), http.StatusNotFound)

	require.NoError(t, svc.Cancel(ctx, db, patient("pat-1"), created.ID))
	// cancelling twice is idempotent
	require.NoError(t, svc.Cancel(ctx, db, patient("pat-1"), created.ID))

	accepted := &models.Prescription{PatientID: "pat-1", Title: "done", Status: models.PrescriptionStatusAccepted}
	require.NoError(t, db.Create(accepted).Error)
	requireAppError(t, svc.Cancel(ctx, db, patient("pat-1"), accepted.ID), http.StatusConflict)
}
