package takeoff

import (
	"context"
	"errors"
	"time"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeasurementService handles annotation and takeoff measurement operations.
// Annotations carry the drawing geometry; measurements carry the quantities
// derived from them, priced against catalogue items.
type MeasurementService struct {
	drawingRepo     takeoff.DrawingRepository
	annotationRepo  takeoff.AnnotationRepository
	measurementRepo takeoff.MeasurementRepository
	catalogueRepo   catalogue.CatalogueRepository
	itemRepo        catalogue.CatalogueItemRepository
	calculator      *takeoff.Calculator
	notifier        DrawingChangeNotifier
	eventPublisher  shared.EventPublisher
}

// NewMeasurementService creates a new MeasurementService
func NewMeasurementService(
	drawingRepo takeoff.DrawingRepository,
	annotationRepo takeoff.AnnotationRepository,
	measurementRepo takeoff.MeasurementRepository,
	catalogueRepo catalogue.CatalogueRepository,
	itemRepo catalogue.CatalogueItemRepository,
) *MeasurementService {
	return &MeasurementService{
		drawingRepo:     drawingRepo,
		annotationRepo:  annotationRepo,
		measurementRepo: measurementRepo,
		catalogueRepo:   catalogueRepo,
		itemRepo:        itemRepo,
		calculator:      takeoff.NewCalculator(),
	}
}

// SetNotifier sets the drawing change notifier
func (s *MeasurementService) SetNotifier(notifier DrawingChangeNotifier) {
	s.notifier = notifier
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *MeasurementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateAnnotation records an annotation on a drawing. When the request
// carries a measurement kind a measurement is created with it, priced
// against the catalogue item when one is given.
func (s *MeasurementService) CreateAnnotation(ctx context.Context, companyID, drawingID uuid.UUID, req CreateAnnotationRequest) (*AnnotationWithMeasurementResponse, error) {
	drawing, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.annotationRepo.FindByAnnotationID(ctx, companyID, drawingID, req.AnnotationID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_ANNOTATION", "An annotation with this ID already exists on the drawing")
	}

	annotation, err := takeoff.NewDrawingAnnotation(companyID, drawingID, req.AnnotationID,
		takeoff.AnnotationType(req.Type), req.PageIndex, req.Geometry)
	if err != nil {
		return nil, err
	}

	if err := s.annotationRepo.Save(ctx, annotation); err != nil {
		return nil, err
	}

	response := &AnnotationWithMeasurementResponse{
		Annotation: ToAnnotationResponse(annotation),
	}

	if req.Kind != "" {
		rawValue := decimal.Zero
		if req.RawValue != nil {
			rawValue = *req.RawValue
		}

		measurement, err := takeoff.NewTraceTakeoffMeasurement(companyID, drawingID, req.AnnotationID,
			takeoff.MeasurementKind(req.Kind), rawValue)
		if err != nil {
			return nil, err
		}

		if req.CatalogueItemID != nil {
			if err := s.applyCalculation(ctx, companyID, measurement, *req.CatalogueItemID, rawValue); err != nil {
				return nil, err
			}
		}

		measurement.AddDomainEvent(takeoff.NewMeasurementCreatedEvent(measurement))
		if err := s.measurementRepo.Save(ctx, measurement); err != nil {
			return nil, err
		}

		s.publishEvents(ctx, measurement)
		s.notifyChange(ctx, DrawingChangeEvent{
			Event:        ChangeEventMeasurementCreated,
			CompanyID:    companyID,
			DrawingID:    drawingID,
			AnnotationID: req.AnnotationID,
			SyncVersion:  drawing.SyncVersion,
			OccurredAt:   time.Now(),
		})

		m := ToMeasurementResponse(measurement)
		response.Measurement = &m
	}

	return response, nil
}

// UpdateAnnotation replaces an annotation's geometry and re-derives its
// measurement when a new raw value is given
func (s *MeasurementService) UpdateAnnotation(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string, req UpdateAnnotationRequest) (*AnnotationWithMeasurementResponse, error) {
	annotation, err := s.annotationRepo.FindByAnnotationID(ctx, companyID, drawingID, annotationID)
	if err != nil {
		return nil, err
	}

	if req.Geometry != nil {
		if err := annotation.UpdateGeometry(*req.Geometry); err != nil {
			return nil, err
		}
		if err := s.annotationRepo.Save(ctx, annotation); err != nil {
			return nil, err
		}
	}

	response := &AnnotationWithMeasurementResponse{
		Annotation: ToAnnotationResponse(annotation),
	}

	measurement, err := s.measurementRepo.FindByAnnotationID(ctx, companyID, drawingID, annotationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return response, nil
		}
		return nil, err
	}

	if req.RawValue != nil {
		quantity := *req.RawValue
		weightKg := decimal.Zero
		if measurement.CatalogueItemID != nil {
			item, err := s.itemRepo.FindByID(ctx, *measurement.CatalogueItemID)
			if err != nil {
				return nil, err
			}
			result, err := s.calculator.Calculate(measurement.Kind, *req.RawValue, item)
			if err != nil {
				return nil, err
			}
			quantity = result.Quantity
			weightKg = result.WeightKg
		}

		if err := measurement.UpdateRawValue(*req.RawValue, quantity, weightKg); err != nil {
			return nil, err
		}
		measurement.AddDomainEvent(takeoff.NewMeasurementUpdatedEvent(measurement))
		if err := s.measurementRepo.Save(ctx, measurement); err != nil {
			return nil, err
		}

		s.publishEvents(ctx, measurement)
		s.notifyChange(ctx, DrawingChangeEvent{
			Event:        ChangeEventMeasurementUpdated,
			CompanyID:    companyID,
			DrawingID:    drawingID,
			AnnotationID: annotationID,
			OccurredAt:   time.Now(),
		})
	}

	m := ToMeasurementResponse(measurement)
	response.Measurement = &m
	return response, nil
}

// DeleteAnnotation removes an annotation and its linked measurement in one
// transaction. A measurement-less annotation deletes cleanly.
func (s *MeasurementService) DeleteAnnotation(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) error {
	if _, err := s.annotationRepo.FindByAnnotationID(ctx, companyID, drawingID, annotationID); err != nil {
		return err
	}

	measurementRemoved, err := s.annotationRepo.DeleteWithMeasurement(ctx, companyID, drawingID, annotationID)
	if err != nil {
		return err
	}

	if measurementRemoved {
		s.notifyChange(ctx, DrawingChangeEvent{
			Event:        ChangeEventMeasurementDeleted,
			CompanyID:    companyID,
			DrawingID:    drawingID,
			AnnotationID: annotationID,
			OccurredAt:   time.Now(),
		})
	}
	return nil
}

// ListAnnotations lists annotations on a drawing paired with their
// measurements
func (s *MeasurementService) ListAnnotations(ctx context.Context, companyID, drawingID uuid.UUID) ([]AnnotationWithMeasurementResponse, error) {
	if _, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID); err != nil {
		return nil, err
	}

	annotations, err := s.annotationRepo.FindByDrawing(ctx, companyID, drawingID)
	if err != nil {
		return nil, err
	}

	measurements, err := s.measurementRepo.FindByDrawing(ctx, companyID, drawingID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	byAnnotation := make(map[string]*takeoff.TraceTakeoffMeasurement, len(measurements))
	for i := range measurements {
		byAnnotation[measurements[i].AnnotationID] = &measurements[i]
	}

	responses := make([]AnnotationWithMeasurementResponse, len(annotations))
	for i := range annotations {
		responses[i] = AnnotationWithMeasurementResponse{
			Annotation: ToAnnotationResponse(&annotations[i]),
		}
		if m, ok := byAnnotation[annotations[i].AnnotationID]; ok {
			resp := ToMeasurementResponse(m)
			responses[i].Measurement = &resp
		}
	}
	return responses, nil
}

// ListMeasurements lists measurements on a drawing
func (s *MeasurementService) ListMeasurements(ctx context.Context, companyID, drawingID uuid.UUID) ([]MeasurementResponse, error) {
	if _, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID); err != nil {
		return nil, err
	}

	measurements, err := s.measurementRepo.FindByDrawing(ctx, companyID, drawingID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	return ToMeasurementResponses(measurements), nil
}

// LinkCatalogueItem prices a measurement against a catalogue item
func (s *MeasurementService) LinkCatalogueItem(ctx context.Context, companyID, measurementID uuid.UUID, req LinkMeasurementRequest) (*MeasurementResponse, error) {
	measurement, err := s.measurementRepo.FindByIDForCompany(ctx, companyID, measurementID)
	if err != nil {
		return nil, err
	}

	if err := s.applyCalculation(ctx, companyID, measurement, req.CatalogueItemID, measurement.RawValue); err != nil {
		return nil, err
	}

	measurement.AddDomainEvent(takeoff.NewMeasurementUpdatedEvent(measurement))
	if err := s.measurementRepo.Save(ctx, measurement); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, measurement)
	s.notifyChange(ctx, DrawingChangeEvent{
		Event:        ChangeEventMeasurementUpdated,
		CompanyID:    companyID,
		DrawingID:    measurement.DrawingID,
		AnnotationID: measurement.AnnotationID,
		OccurredAt:   time.Now(),
	})

	response := ToMeasurementResponse(measurement)
	return &response, nil
}

// GenerateBOM aggregates a drawing's measurements by catalogue item into a
// bill of materials
func (s *MeasurementService) GenerateBOM(ctx context.Context, companyID, drawingID uuid.UUID) (*BOMResponse, error) {
	drawing, err := s.drawingRepo.FindByIDForCompany(ctx, companyID, drawingID)
	if err != nil {
		return nil, err
	}

	measurements, err := s.measurementRepo.FindByDrawing(ctx, companyID, drawingID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	type aggregate struct {
		item     *catalogue.CatalogueItem
		quantity decimal.Decimal
		weightKg decimal.Decimal
	}
	aggregates := make(map[uuid.UUID]*aggregate)
	order := make([]uuid.UUID, 0)

	for i := range measurements {
		m := &measurements[i]
		if m.CatalogueItemID == nil {
			continue
		}
		agg, ok := aggregates[*m.CatalogueItemID]
		if !ok {
			item, err := s.itemRepo.FindByID(ctx, *m.CatalogueItemID)
			if err != nil {
				return nil, err
			}
			agg = &aggregate{item: item, quantity: decimal.Zero, weightKg: decimal.Zero}
			aggregates[*m.CatalogueItemID] = agg
			order = append(order, *m.CatalogueItemID)
		}
		agg.quantity = agg.quantity.Add(m.Quantity)
		agg.weightKg = agg.weightKg.Add(m.WeightKg)
	}

	lines := make([]BOMLineResponse, 0, len(order))
	totalWeight := decimal.Zero
	totalCost := decimal.Zero
	for _, itemID := range order {
		agg := aggregates[itemID]
		cost := agg.quantity.Mul(agg.item.UnitCost).Round(2)
		lines = append(lines, BOMLineResponse{
			CatalogueItemID: itemID,
			ItemCode:        agg.item.ItemCode,
			Description:     agg.item.Description,
			Unit:            string(agg.item.Unit),
			Quantity:        agg.quantity,
			WeightKg:        agg.weightKg,
			Cost:            cost,
		})
		totalWeight = totalWeight.Add(agg.weightKg)
		totalCost = totalCost.Add(cost)
	}

	return &BOMResponse{
		DrawingID:     drawingID,
		WorkPackageID: drawing.WorkPackageID,
		Lines:         lines,
		TotalWeightKg: totalWeight,
		TotalCost:     totalCost,
		GeneratedAt:   time.Now(),
	}, nil
}

// applyCalculation verifies the catalogue item is visible to the company,
// runs the takeoff calculation and links the result to the measurement
func (s *MeasurementService) applyCalculation(ctx context.Context, companyID uuid.UUID, measurement *takeoff.TraceTakeoffMeasurement, itemID uuid.UUID, rawValue decimal.Decimal) error {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, item.CatalogueID); err != nil {
		return err
	}

	result, err := s.calculator.Calculate(measurement.Kind, rawValue, item)
	if err != nil {
		return err
	}

	return measurement.LinkCatalogueItem(item.ID, result.Quantity, result.WeightKg)
}

func (s *MeasurementService) notifyChange(ctx context.Context, event DrawingChangeEvent) {
	if s.notifier == nil {
		return
	}
	if event.ClientID == "" {
		event.ClientID = ClientIDFromContext(ctx)
	}
	_ = s.notifier.NotifyDrawingChanged(ctx, event)
}

func (s *MeasurementService) publishEvents(ctx context.Context, m *takeoff.TraceTakeoffMeasurement) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range m.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	m.ClearDomainEvents()
}
