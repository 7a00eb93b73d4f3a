//This project is the school meal backend API. It resolves schools and serves the daily cafeteria menu compiled from the NEIS open data service.
//API Copyright (C) 2025 OpenSourceDUTH
//This program is free software: you can redistribute it and/or modify
//it under the terms of the GNU General Public License as published by
//the Free Software Foundation, either version 3 of the License, or
//(at your option) any later version.
//
//This program is distributed in the hope that it will be useful,
//but WITHOUT ANY WARRANTY; without even the implied warranty of
//MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//GNU General Public License for more details.
//
//You should have received a copy of the GNU General Public License
//along with this program.  If not, see <https://www.gnu.org/licenses/>.
package card

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderedAt = time.Date(2025, time.October, 15, 7, 30, 0, 0, time.UTC)

func sampleContent() Content {
	return Content{
		RenderedAt: renderedAt,
		School:     "Sample High School",
		Slots:      [BadgeCount]string{"조식", "중식", "석식"},
		Calories:   "712.4 Kcal",
		Dishes:     []string{"Rice", "Kimchi stew", "Kimchi"},
	}
}

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer("")
	require.NoError(t, err)
	return c
}

func pixels(t *testing.T, img *RenderedImage) []byte {
	t.Helper()
	rgba, ok := img.Image.(*image.RGBA)
	require.True(t, ok, "expected *image.RGBA, got %T", img.Image)
	return rgba.Pix
}

func assertColorNear(t *testing.T, want color.RGBA, got color.Color) {
	t.Helper()
	r, g, b, a := got.RGBA()
	near := func(x uint32, y uint8) bool {
		d := int(x>>8) - int(y)
		return d >= -2 && d <= 2
	}
	assert.True(t, near(r, want.R) && near(g, want.G) && near(b, want.B) && near(a, want.A),
		"want %v, got %d,%d,%d,%d", want, r>>8, g>>8, b>>8, a>>8)
}

func TestRenderDimensions(t *testing.T) {
	img, err := newTestComposer(t).Render(sampleContent())
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, CanvasSize, CanvasSize), img.Bounds())
}

func TestRenderBackgroundAndBadges(t *testing.T) {
	img, err := newTestComposer(t).Render(sampleContent())
	require.NoError(t, err)

	assertColorNear(t, color.RGBA{R: 0xFF, G: 0xF6, B: 0xE5, A: 0xFF}, img.At(5, 5))
	assertColorNear(t, color.RGBA{R: 0xFF, G: 0xF6, B: 0xE5, A: 0xFF}, img.At(CanvasSize-5, CanvasSize-5))

	badge := color.RGBA{R: 0xF4, G: 0xA2, B: 0x59, A: 0xFF}
	for i := 0; i < BadgeCount; i++ {
		x := int(BadgeX(i) + 2*BadgeRadius)
		y := int(BadgeTop + 8)
		assertColorNear(t, badge, img.At(x, y))
	}

	// gaps between badges stay background
	gapX := int(BadgeX(1) - BadgeGap/2)
	assertColorNear(t, color.RGBA{R: 0xFF, G: 0xF6, B: 0xE5, A: 0xFF}, img.At(gapX, int(BadgeTop+BadgeHeight/2)))
}

func TestRenderIsDeterministic(t *testing.T) {
	c := newTestComposer(t)

	first, err := c.Render(sampleContent())
	require.NoError(t, err)
	second, err := c.Render(sampleContent())
	require.NoError(t, err)

	assert.True(t, bytes.Equal(pixels(t, first), pixels(t, second)), "identical content must render identical pixels")
}

func TestRenderDependsOnContent(t *testing.T) {
	c := newTestComposer(t)

	base, err := c.Render(sampleContent())
	require.NoError(t, err)

	changed := sampleContent()
	changed.Dishes = append(changed.Dishes, "Seasoned spinach")
	other, err := c.Render(changed)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(pixels(t, base), pixels(t, other)))
}

func TestRenderWithoutDishes(t *testing.T) {
	content := sampleContent()
	content.Dishes = nil

	img, err := newTestComposer(t).Render(content)
	require.NoError(t, err)
	assert.Equal(t, CanvasSize, img.Bounds().Dx())
}

func TestRegisterFontIsIdempotent(t *testing.T) {
	require.NoError(t, RegisterFont(""))
	// The first registration wins, so a bogus path is never read.
	require.NoError(t, RegisterFont("/does/not/exist.ttf"))
	assert.NotEmpty(t, FontName())
}

func TestEncodePNG(t *testing.T) {
	img, err := newTestComposer(t).Render(sampleContent())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, img.EncodePNG(&buf))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
