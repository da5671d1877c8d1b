package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocType_IsValid(t *testing.T) {
	for _, dt := range AllDocTypes() {
		assert.True(t, dt.IsValid(), "%s", dt)
	}
	assert.Len(t, AllDocTypes(), 4)

	assert.False(t, DocType("").IsValid())
	assert.False(t, DocType("UNKNOWN").IsValid())
}

func TestPaperSize_IsValid(t *testing.T) {
	for _, ps := range AllPaperSizes() {
		assert.True(t, ps.IsValid(), "%s", ps)
	}
	assert.Len(t, AllPaperSizes(), 4)

	assert.False(t, PaperSize("").IsValid())
	assert.False(t, PaperSize("TABLOID").IsValid())
}

func TestPaperSize_Dimensions(t *testing.T) {
	type wh struct{ w, h int }
	want := map[PaperSize]wh{
		PaperSizeA4:     {210, 297},
		PaperSizeA3:     {297, 420},
		PaperSizeA5:     {148, 210},
		PaperSizeLetter: {216, 279},
	}

	for ps, dims := range want {
		t.Run(ps.String(), func(t *testing.T) {
			w, h := ps.Dimensions()
			assert.Equal(t, dims.w, w)
			assert.Equal(t, dims.h, h)
		})
	}

	t.Run("unknown size falls back to A4", func(t *testing.T) {
		w, h := PaperSize("TABLOID").Dimensions()
		assert.Equal(t, 210, w)
		assert.Equal(t, 297, h)
	})
}

func TestOrientation_IsValid(t *testing.T) {
	assert.True(t, OrientationPortrait.IsValid())
	assert.True(t, OrientationLandscape.IsValid())
	assert.False(t, Orientation("").IsValid())
	assert.False(t, Orientation("ROTATED").IsValid())
}
