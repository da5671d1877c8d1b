package production

import (
	"strconv"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoutingTemplateLine is one operation step in a reusable routing template
type RoutingTemplateLine struct {
	ID                  uuid.UUID
	TemplateID          uuid.UUID
	SequenceNumber      int
	OperationCode       string
	OperationName       string
	PlannedSetupMinutes decimal.Decimal
	PlannedRunMinutes   decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RoutingTemplate is a reusable named list of operations used to seed a
// work order's routing.
type RoutingTemplate struct {
	shared.CompanyAggregateRoot
	Name        string
	Description string
	Lines       []RoutingTemplateLine
}

// NewRoutingTemplate creates a new routing template
func NewRoutingTemplate(companyID uuid.UUID, name, description string) (*RoutingTemplate, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}

	return &RoutingTemplate{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Description:          description,
		Lines:                make([]RoutingTemplateLine, 0),
	}, nil
}

// AddLine appends an operation to the template.
// Sequence numbers must be unique within the template.
func (t *RoutingTemplate) AddLine(sequenceNumber int, operationCode, operationName string, plannedSetupMinutes, plannedRunMinutes decimal.Decimal) error {
	if sequenceNumber <= 0 {
		return shared.NewDomainError("INVALID_SEQUENCE", "Sequence number must be positive")
	}
	if operationCode == "" {
		return shared.NewDomainError("INVALID_OPERATION", "Operation code cannot be empty")
	}
	if plannedSetupMinutes.IsNegative() || plannedRunMinutes.IsNegative() {
		return shared.NewDomainError("INVALID_DURATION", "Planned minutes cannot be negative")
	}
	for _, existing := range t.Lines {
		if existing.SequenceNumber == sequenceNumber {
			return shared.NewDomainError("DUPLICATE_SEQUENCE",
				"Template already contains sequence number "+strconv.Itoa(sequenceNumber))
		}
	}

	now := time.Now()
	t.Lines = append(t.Lines, RoutingTemplateLine{
		ID:                  uuid.New(),
		TemplateID:          t.ID,
		SequenceNumber:      sequenceNumber,
		OperationCode:       operationCode,
		OperationName:       operationName,
		PlannedSetupMinutes: plannedSetupMinutes,
		PlannedRunMinutes:   plannedRunMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	t.UpdatedAt = now
	return nil
}

// RemoveLine removes an operation from the template by line ID
func (t *RoutingTemplate) RemoveLine(lineID uuid.UUID) error {
	for i, line := range t.Lines {
		if line.ID == lineID {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Template line not found")
}

// InstantiateRouting builds routing lines for a work order from the template
func (t *RoutingTemplate) InstantiateRouting(workOrderID uuid.UUID) ([]*RoutingLine, error) {
	if len(t.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_TEMPLATE", "Template has no operations")
	}

	lines := make([]*RoutingLine, 0, len(t.Lines))
	for _, tl := range t.Lines {
		line, err := NewRoutingLine(workOrderID, tl.SequenceNumber, tl.OperationCode, tl.OperationName, tl.PlannedSetupMinutes, tl.PlannedRunMinutes)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
