package takeoff

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxInstantJSONBytes caps the serialized annotation blob size
const MaxInstantJSONBytes = 8 << 20

// PackageDrawing is a stored PDF plus the serialized annotation/measurement
// blob (Instant JSON) that the synchronization flow guards. SyncVersion is a
// monotonic counter; every blob replacement is a compare-and-swap against it,
// so concurrent saves resolve deterministically instead of last-writer-wins.
type PackageDrawing struct {
	shared.CompanyAggregateRoot
	WorkPackageID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName      string
	StorageKey    string
	FileSizeBytes int64
	PageCount     int
	InstantJSON   string `gorm:"column:instant_json;type:text"`
	SyncVersion   int64  `gorm:"not null;default:1"`
}

// NewPackageDrawing registers an uploaded PDF against a work package
func NewPackageDrawing(companyID, workPackageID uuid.UUID, fileName, storageKey string, fileSizeBytes int64, pageCount int) (*PackageDrawing, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if workPackageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORK_PACKAGE", "Work package ID cannot be empty")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Only PDF drawings are accepted")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if fileSizeBytes <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}

	d := &PackageDrawing{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		WorkPackageID:        workPackageID,
		FileName:             fileName,
		StorageKey:           storageKey,
		FileSizeBytes:        fileSizeBytes,
		PageCount:            pageCount,
		InstantJSON:          "",
		SyncVersion:          1,
	}

	d.AddDomainEvent(NewDrawingUploadedEvent(d))
	return d, nil
}

// ValidateInstantJSON checks the blob is parseable JSON and within the size
// cap. The blob's internal schema belongs to the PDF SDK and stays opaque
// beyond this.
func ValidateInstantJSON(blob string) error {
	if blob == "" {
		return nil
	}
	if len(blob) > MaxInstantJSONBytes {
		return shared.NewDomainError("BLOB_TOO_LARGE", "Annotation blob exceeds the size limit")
	}
	if !json.Valid([]byte(blob)) {
		return shared.NewDomainError("INVALID_BLOB", "Annotation blob is not valid JSON")
	}
	return nil
}

// ReplaceInstantJSON replaces the whole annotation blob after a successful
// compare-and-swap. The repository performs the version check; this method
// applies the in-memory result.
func (d *PackageDrawing) ReplaceInstantJSON(blob string) error {
	if err := ValidateInstantJSON(blob); err != nil {
		return err
	}

	d.InstantJSON = blob
	d.SyncVersion++
	d.UpdatedAt = time.Now()

	d.AddDomainEvent(NewInstantJSONUpdatedEvent(d))
	return nil
}

// AnnotationCount reports how many annotations the stored blob contains.
// Instant JSON keeps annotations under a top-level "annotations" array;
// anything else counts as zero.
func (d *PackageDrawing) AnnotationCount() int {
	if d.InstantJSON == "" {
		return 0
	}
	var doc struct {
		Annotations []json.RawMessage `json:"annotations"`
	}
	if err := json.Unmarshal([]byte(d.InstantJSON), &doc); err != nil {
		return 0
	}
	return len(doc.Annotations)
}
