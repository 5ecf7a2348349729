package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	NotificationService     NotificationService
	PrescriptionService     PrescriptionService
	PharmacyResponseService PharmacyResponseService
}
