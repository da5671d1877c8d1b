package printing

import "github.com/fabmate/backend/internal/domain/shared"

// Margins are page margins in millimeters.
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewMargins validates that every side sits between 0 and 100mm.
func NewMargins(top, right, bottom, left int) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
	}
	if top > 100 || right > 100 || bottom > 100 || left > 100 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 100mm")
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// DefaultMargins is the standard 10mm frame used by travellers and route cards.
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// DrawingSheetMargins keeps the title block close to the sheet edge.
func DrawingSheetMargins() Margins {
	return Margins{Top: 5, Right: 5, Bottom: 5, Left: 5}
}

func (m Margins) IsZero() bool {
	return m == Margins{}
}

func (m Margins) Equals(other Margins) bool {
	return m == other
}
