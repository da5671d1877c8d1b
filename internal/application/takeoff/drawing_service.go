package takeoff

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
)

// MaxDrawingSizeBytes caps uploaded PDFs at 50 MB
const MaxDrawingSizeBytes = 50 << 20

// ObjectStorageService defines the interface for drawing blob storage.
// Implemented by the infrastructure layer against S3-compatible stores.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

// SyncConflictError reports a lost instant JSON compare-and-swap. The client
// resyncs against CurrentVersion before retrying.
type SyncConflictError struct {
	DrawingID      uuid.UUID
	CurrentVersion int64
}

// Error implements the error interface
func (e *SyncConflictError) Error() string {
	return "Drawing annotations were modified elsewhere; resync to version " + strconv.FormatInt(e.CurrentVersion, 10)
}

// Unwrap lets errors.Is match the shared concurrency error
func (e *SyncConflictError) Unwrap() error {
	return shared.ErrConcurrencyConflict
}

// DrawingServiceConfig holds configuration for the drawing service
type DrawingServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultDrawingServiceConfig returns the default configuration
func DefaultDrawingServiceConfig() DrawingServiceConfig {
	return DrawingServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// DrawingService handles package drawing upload, retrieval and the guarded
// instant JSON autosave flow
type DrawingService struct {
	drawingRepo     takeoff.DrawingRepository
	workPackageRepo production.WorkPackageRepository
	storageService  ObjectStorageService
	notifier        DrawingChangeNotifier
	eventPublisher  shared.EventPublisher
	config          DrawingServiceConfig
}

// NewDrawingService creates a new DrawingService
func NewDrawingService(
	drawingRepo takeoff.DrawingRepository,
	workPackageRepo production.WorkPackageRepository,
	storageService ObjectStorageService,
) *DrawingService {
	return &DrawingService{
		drawingRepo:     drawingRepo,
		workPackageRepo: workPackageRepo,
		storageService:  storageService,
		config:          DefaultDrawingServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *DrawingService) SetConfig(config DrawingServiceConfig) {
	s.config = config
}

// SetNotifier sets the drawing change notifier
func (s *DrawingService) SetNotifier(notifier DrawingChangeNotifier) {
	s.notifier = notifier
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DrawingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// InitiateUpload registers a drawing against a work package and returns a
// presigned URL for the PDF upload
func (s *DrawingService) InitiateUpload(ctx context.Context, companyID uuid.UUID, req InitiateDrawingUploadRequest, uploadedBy *uuid.UUID) (*InitiateDrawingUploadResponse, error) {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, req.WorkPackageID)
	if err != nil {
		return nil, err
	}
	if wp.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add drawings to a completed or cancelled work package")
	}
	if req.FileSizeBytes > MaxDrawingSizeBytes {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("Drawing exceeds the maximum size of %d bytes", MaxDrawingSizeBytes))
	}

	storageKey := s.generateStorageKey(companyID, req.WorkPackageID, req.FileName)

	drawing, err := takeoff.NewPackageDrawing(companyID, req.WorkPackageID, req.FileName, storageKey, req.FileSizeBytes, req.PageCount)
	if err != nil {
		return nil, err
	}
	if uploadedBy != nil {
		drawing.SetCreatedBy(*uploadedBy)
	}

	if err := s.drawingRepo.Save(ctx, drawing); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, "application/pdf", s.config.UploadURLExpiry)
	if err != nil {
		_ = s.drawingRepo.DeleteForCompany(ctx, companyID, drawing.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	s.publishEvents(ctx, drawing)

	return &InitiateDrawingUploadResponse{
		Drawing:   ToDrawingResponse(drawing),
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// GetByID retrieves a drawing with a presigned download URL
func (s *DrawingService) GetByID(ctx context.Context, companyID, drawingID uuid.UUID) (*DrawingResponse, error) {
	drawing, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID)
	if err != nil {
		return nil, err
	}

	response := ToDrawingResponse(drawing)
	if url, _, err := s.storageService.GenerateDownloadURL(ctx, drawing.StorageKey, s.config.DownloadURLExpiry); err == nil {
		response.DownloadURL = url
	}
	return &response, nil
}

// Open retrieves a drawing with its annotation blob for the measurement view
func (s *DrawingService) Open(ctx context.Context, companyID, drawingID uuid.UUID) (*DrawingDetailResponse, error) {
	drawing, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID)
	if err != nil {
		return nil, err
	}

	response := DrawingDetailResponse{
		DrawingResponse: ToDrawingResponse(drawing),
		InstantJSON:     drawing.InstantJSON,
	}
	if url, _, err := s.storageService.GenerateDownloadURL(ctx, drawing.StorageKey, s.config.DownloadURLExpiry); err == nil {
		response.DownloadURL = url
	}
	return &response, nil
}

// ListByWorkPackage lists drawings under a work package
func (s *DrawingService) ListByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID, page, pageSize int) ([]DrawingResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}

	drawings, err := s.drawingRepo.FindByWorkPackage(ctx, companyID, workPackageID, filter)
	if err != nil {
		return nil, 0, err
	}

	countFilter := filter
	countFilter.Filters = map[string]interface{}{"work_package_id": workPackageID}
	total, err := s.drawingRepo.CountForCompany(ctx, companyID, countFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DrawingResponse, len(drawings))
	for i := range drawings {
		responses[i] = ToDrawingResponse(&drawings[i])
	}
	return responses, total, nil
}

// SaveInstantJSON replaces the drawing's annotation blob through a
// compare-and-swap on the sync version. When two clients race, the first
// save wins and the second receives a SyncConflictError carrying the
// version to resync against.
func (s *DrawingService) SaveInstantJSON(ctx context.Context, companyID, drawingID uuid.UUID, req SaveInstantJSONRequest) (*SaveInstantJSONResponse, error) {
	if err := takeoff.ValidateInstantJSON(req.InstantJSON); err != nil {
		return nil, err
	}

	newVersion, err := s.drawingRepo.ReplaceInstantJSON(ctx, companyID, drawingID, req.InstantJSON, req.BaseVersion)
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, &SyncConflictError{DrawingID: drawingID, CurrentVersion: newVersion}
		}
		return nil, err
	}

	s.notifyChange(ctx, DrawingChangeEvent{
		Event:       ChangeEventInstantJSONUpdated,
		CompanyID:   companyID,
		DrawingID:   drawingID,
		SyncVersion: newVersion,
		OccurredAt:  time.Now(),
	})

	return &SaveInstantJSONResponse{
		DrawingID:   drawingID,
		SyncVersion: newVersion,
	}, nil
}

// Delete removes a drawing, its annotations and measurements, and the
// stored PDF
func (s *DrawingService) Delete(ctx context.Context, companyID, drawingID uuid.UUID) error {
	drawing, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID)
	if err != nil {
		return err
	}

	if err := s.drawingRepo.DeleteForCompany(ctx, companyID, drawingID); err != nil {
		return err
	}

	// Best effort; an orphaned object is reaped by the storage lifecycle rule
	_ = s.storageService.DeleteObject(ctx, drawing.StorageKey)
	return nil
}

func (s *DrawingService) generateStorageKey(companyID, workPackageID uuid.UUID, fileName string) string {
	safeName := strings.ReplaceAll(fileName, "/", "_")
	return fmt.Sprintf("drawings/%s/%s/%s_%s", companyID, workPackageID, uuid.New().String()[:8], safeName)
}

func (s *DrawingService) notifyChange(ctx context.Context, event DrawingChangeEvent) {
	if s.notifier == nil {
		return
	}
	if event.ClientID == "" {
		event.ClientID = ClientIDFromContext(ctx)
	}
	_ = s.notifier.NotifyDrawingChanged(ctx, event)
}

func (s *DrawingService) publishEvents(ctx context.Context, drawing *takeoff.PackageDrawing) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range drawing.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	drawing.ClearDomainEvents()
}
