package printing

import "slices"

// DocType identifies the document a render request produces.
type DocType string

const (
	// DocTypeBillOfMaterials is the BOM extracted from a drawing takeoff.
	DocTypeBillOfMaterials DocType = "BILL_OF_MATERIALS"
	// DocTypeWorkOrderTraveler is the shop traveler accompanying a work order.
	DocTypeWorkOrderTraveler DocType = "WORK_ORDER_TRAVELER"
	// DocTypeRoutingSheet lists a routing's operations in sequence.
	DocTypeRoutingSheet DocType = "ROUTING_SHEET"
	// DocTypeTraceCertificate certifies a part's material genealogy.
	DocTypeTraceCertificate DocType = "TRACE_CERTIFICATE"
)

// AllDocTypes lists every renderable document type.
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeBillOfMaterials, DocTypeWorkOrderTraveler, DocTypeRoutingSheet, DocTypeTraceCertificate,
	}
}

func (d DocType) IsValid() bool {
	return slices.Contains(AllDocTypes(), d)
}

func (d DocType) String() string { return string(d) }

// PaperSize names the physical page format.
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA3     PaperSize = "A3"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"
)

// AllPaperSizes lists every supported page format.
func AllPaperSizes() []PaperSize {
	return []PaperSize{
		PaperSizeA4, PaperSizeA3, PaperSizeA5, PaperSizeLetter,
	}
}

func (p PaperSize) IsValid() bool {
	return slices.Contains(AllPaperSizes(), p)
}

func (p PaperSize) String() string { return string(p) }

var paperDimensionsMM = map[PaperSize][2]int{
	PaperSizeA4:     {210, 297},
	PaperSizeA3:     {297, 420},
	PaperSizeA5:     {148, 210},
	PaperSizeLetter: {216, 279},
}

// Dimensions returns width and height in millimeters. Unknown sizes report
// A4 so a stale request still yields a printable page.
func (p PaperSize) Dimensions() (width, height int) {
	dims, ok := paperDimensionsMM[p]
	if !ok {
		dims = paperDimensionsMM[PaperSizeA4]
	}
	return dims[0], dims[1]
}

// Orientation is the page rotation.
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

func (o Orientation) IsValid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

func (o Orientation) String() string { return string(o) }
