package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/imageprocessor"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/internal/storage"
	"pharmacy_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionService interface {
	Upload(ctx context.Context, db *gorm.DB, caller *auth.Claims, req *dto.CreatePrescriptionRequest, image *multipart.FileHeader) (*dto.PrescriptionResponse, error)
	ListMine(ctx context.Context, db *gorm.DB, caller *auth.Claims, status string, page, pageSize int) (*dto.PrescriptionListResponse, error)
	ListOpen(ctx context.Context, db *gorm.DB, caller *auth.Claims, page, pageSize int) (*dto.PrescriptionListResponse, error)
	Get(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) (*dto.PrescriptionResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) error
}

// ImagePolicy limits what can be attached to a prescription. Scans larger
// than MaxDimension pixels on a side are downscaled before storing.
type ImagePolicy struct {
	MaxSize      int64
	AllowedTypes []string
	URLTTL       time.Duration
	MaxDimension int
}

var imageExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type prescriptionService struct {
	repo      repositories.PrescriptionRepository
	storage   storage.Storage
	policy    ImagePolicy
	processor *imageprocessor.Processor
}

func NewPrescriptionService(repo repositories.PrescriptionRepository, store storage.Storage, policy ImagePolicy) PrescriptionService {
	if policy.URLTTL <= 0 {
		policy.URLTTL = 15 * time.Minute
	}
	s := &prescriptionService{repo: repo, storage: store, policy: policy}
	if policy.MaxDimension > 0 {
		s.processor = imageprocessor.NewProcessor(imageprocessor.DefaultQuality, policy.MaxDimension)
	}
	return s
}

func (s *prescriptionService) Upload(ctx context.Context, db *gorm.DB, caller *auth.Claims, req *dto.CreatePrescriptionRequest, image *multipart.FileHeader) (*dto.PrescriptionResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if !auth.IsPatient(caller) {
		return nil, apperrors.ErrInsufficientPermissions()
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ValidationError(map[string]string{"title": "This field is required"})
	}

	prescription := &models.Prescription{
		PatientID:    caller.UserID,
		PatientEmail: caller.Email,
		Title:        title,
		Notes:        strings.TrimSpace(req.Notes),
		Status:       models.PrescriptionStatusPending,
	}

	if image != nil {
		key, err := s.storeImage(ctx, caller.UserID, image)
		if err != nil {
			return nil, err
		}
		prescription.ImagePath = key
	}

	if err := s.repo.Create(db, prescription); err != nil {
		if prescription.ImagePath != "" {
			if delErr := s.storage.Delete(ctx, prescription.ImagePath); delErr != nil {
				logger.CtxWarn(ctx, "orphaned prescription image", "key", prescription.ImagePath, "error", delErr.Error())
			}
		}
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "prescription uploaded", "prescription_id", prescription.ID, "has_image", prescription.ImagePath != "")
	return s.buildResponse(ctx, prescription), nil
}

func (s *prescriptionService) storeImage(ctx context.Context, patientID string, image *multipart.FileHeader) (string, error) {
	if s.storage == nil {
		return "", apperrors.NewMisconfiguredError("storage", "Image storage is not configured")
	}
	if s.policy.MaxSize > 0 && image.Size > s.policy.MaxSize {
		return "", apperrors.ErrImageTooLarge()
	}

	file, err := image.Open()
	if err != nil {
		return "", apperrors.NewBadRequestError("Unable to read uploaded image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewBadRequestError("Unable to read uploaded image")
	}
	contentType := http.DetectContentType(data)
	if !s.allowed(contentType) {
		return "", apperrors.ErrInvalidImageType()
	}

	if s.processor != nil {
		fitted, resized, err := s.processor.Fit(data)
		if err != nil {
			return "", apperrors.ErrInvalidImageType()
		}
		if resized {
			logger.CtxDebug(ctx, "prescription image downscaled", "from_bytes", len(data), "to_bytes", len(fitted))
			data = fitted
		}
	}

	key := path.Join("prescriptions", patientID, uuid.NewString()+imageExtensions[contentType])
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternalServiceError, "storage", "Failed to store image", http.StatusBadGateway)
	}
	return key, nil
}

func (s *prescriptionService) allowed(contentType string) bool {
	if _, known := imageExtensions[contentType]; !known {
		return false
	}
	if len(s.policy.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.policy.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func (s *prescriptionService) ListMine(ctx context.Context, db *gorm.DB, caller *auth.Claims, status string, page, pageSize int) (*dto.PrescriptionListResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	page, pageSize = normalizePage(page, pageSize)

	rows, total, err := s.repo.ListByPatient(db, caller.UserID, models.PrescriptionStatus(status), page, pageSize)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.buildList(ctx, rows, total, page, pageSize), nil
}

func (s *prescriptionService) ListOpen(ctx context.Context, db *gorm.DB, caller *auth.Claims, page, pageSize int) (*dto.PrescriptionListResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if !auth.IsPharmacy(caller) && !auth.IsAdmin(caller) {
		return nil, apperrors.ErrInsufficientPermissions()
	}
	page, pageSize = normalizePage(page, pageSize)

	rows, total, err := s.repo.ListOpen(db, page, pageSize)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.buildList(ctx, rows, total, page, pageSize), nil
}

// Get returns the prescription to its owner or to any pharmacy. Everyone
// else sees NotFound.
func (s *prescriptionService) Get(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) (*dto.PrescriptionResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated()
	}

	prescription, err := s.repo.FindByID(db, prescriptionID)
	if err != nil {
		return nil, handlePrescriptionError(err)
	}
	if !canViewPrescription(caller, prescription) {
		return nil, apperrors.ErrPrescriptionNotFound()
	}
	return s.buildResponse(ctx, prescription), nil
}

func (s *prescriptionService) Cancel(ctx context.Context, db *gorm.DB, caller *auth.Claims, prescriptionID string) error {
	if caller == nil {
		return apperrors.ErrUnauthenticated()
	}
	if !auth.IsPatient(caller) {
		return apperrors.ErrInsufficientPermissions()
	}

	affected, err := s.repo.CancelForPatient(db, prescriptionID, caller.UserID)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if affected > 0 {
		return nil
	}

	// distinguish a missing prescription from one that is already closed
	prescription, err := s.repo.FindByIDForPatient(db, prescriptionID, caller.UserID)
	if err != nil {
		return handlePrescriptionError(err)
	}
	if prescription.Status == models.PrescriptionStatusCancelled {
		return nil
	}
	return apperrors.ErrPrescriptionClosed()
}

func canViewPrescription(caller *auth.Claims, p *models.Prescription) bool {
	return p.PatientID == caller.UserID || auth.IsPharmacy(caller) || auth.IsAdmin(caller)
}

func (s *prescriptionService) buildList(ctx context.Context, rows []models.Prescription, total int64, page, pageSize int) *dto.PrescriptionListResponse {
	items := make([]*dto.PrescriptionResponse, 0, len(rows))
	for i := range rows {
		items = append(items, s.buildResponse(ctx, &rows[i]))
	}
	return &dto.PrescriptionListResponse{
		Prescriptions: items,
		Pagination:    dto.NewPagination(total, page, pageSize),
	}
}

func (s *prescriptionService) buildResponse(ctx context.Context, p *models.Prescription) *dto.PrescriptionResponse {
	resp := &dto.PrescriptionResponse{
		ID:        p.ID,
		PatientID: p.PatientID,
		Title:     p.Title,
		Notes:     p.Notes,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.ImagePath != "" && s.storage != nil {
		url, err := s.storage.URL(ctx, p.ImagePath, s.policy.URLTTL)
		if err != nil {
			logger.CtxWarn(ctx, "prescription image url failed", "key", p.ImagePath, "error", err.Error())
		} else {
			resp.ImageURL = url
		}
	}
	return resp
}

func handlePrescriptionError(err error) error {
	if errors.Is(err, repositories.ErrPrescriptionNotFound) {
		return apperrors.ErrPrescriptionNotFound()
	}
	return apperrors.DatabaseError(fmt.Errorf("prescription lookup: %w", err))
}
