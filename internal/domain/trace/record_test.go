package trace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceRecord(t *testing.T) {
	companyID := uuid.New()
	refID := uuid.New()

	r, err := NewTraceRecord(companyID, RecordTypeMaterialReceipt, "CatalogueItem", refID, "Heat 7741 delivery")
	require.NoError(t, err)

	assert.Equal(t, RecordTypeMaterialReceipt, r.RecordType)
	assert.Nil(t, r.ParentID)
	assert.False(t, r.RecordedAt.IsZero())
}

func TestNewTraceRecord_Validation(t *testing.T) {
	companyID := uuid.New()
	refID := uuid.New()

	tests := []struct {
		name       string
		recordType RecordType
		refType    string
		refID      uuid.UUID
	}{
		{"invalid type", RecordType("RECYCLING"), "WorkOrder", refID},
		{"empty reference type", RecordTypeProcessing, "", refID},
		{"nil reference id", RecordTypeProcessing, "WorkOrder", uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTraceRecord(companyID, tt.recordType, tt.refType, tt.refID, "")
			assert.Error(t, err)
		})
	}
}

func TestTraceRecord_LinkParent(t *testing.T) {
	companyID := uuid.New()

	parent, err := NewTraceRecord(companyID, RecordTypeMaterialReceipt, "CatalogueItem", uuid.New(), "")
	require.NoError(t, err)
	child, err := NewTraceRecord(companyID, RecordTypeProcessing, "WorkOrder", uuid.New(), "")
	require.NoError(t, err)

	require.NoError(t, child.LinkParent(parent.ID))
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	assert.Error(t, child.LinkParent(uuid.Nil))
	assert.Error(t, child.LinkParent(child.ID), "self-link rejected")
}
