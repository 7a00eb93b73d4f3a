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

// Package card draws the shareable meal card: a fixed 1080x1080 layout with a
// title, the school name, a row of meal slot badges, the calorie line and the
// dish list.
package card

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Content is everything drawn on one card.
type Content struct {
	RenderedAt time.Time
	School     string
	Slots      [BadgeCount]string
	Calories   string
	Dishes     []string
}

// RenderedImage is a finished card. It is a plain in-memory image owned by the
// caller, who decides how to encode it.
type RenderedImage struct {
	image.Image
}

// EncodePNG writes the card to w as PNG.
func (r *RenderedImage) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image)
}

// Composer renders cards with the registered font. It holds no per-call state
// and is safe for concurrent use.
type Composer struct {
	title   text.Face
	label   text.Face
	badge   text.Face
	calorie text.Face
	dish    text.Face
}

// NewComposer registers the card font (once per process) and prepares the
// faces for every text element.
func NewComposer(fontPath string) (*Composer, error) {
	if err := RegisterFont(fontPath); err != nil {
		return nil, err
	}
	return &Composer{
		title:   fontSource.Face(TitleSize),
		label:   fontSource.Face(LabelSize),
		badge:   fontSource.Face(BadgeSize),
		calorie: fontSource.Face(CalorieSize),
		dish:    fontSource.Face(DishSize),
	}, nil
}

// Render draws content onto a fresh canvas.
func (c *Composer) Render(content Content) (*RenderedImage, error) {
	dc := gg.NewContext(CanvasSize, CanvasSize)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(gg.Hex(BackgroundColor))

	// Title and right aligned school name share one baseline
	dc.SetHexColor(TextColor)
	dc.SetFont(c.title)
	dc.DrawString(Title(content.RenderedAt), Margin, TitleBaseline)

	dc.SetFont(c.label)
	schoolWidth, _ := dc.MeasureString(content.School)
	dc.DrawString(content.School, LabelX(schoolWidth), TitleBaseline)

	// Badges
	dc.SetFont(c.badge)
	for i, slot := range content.Slots {
		dc.SetHexColor(BadgeColor)
		dc.DrawRoundedRectangle(BadgeX(i), BadgeTop, BadgeWidth, BadgeHeight, BadgeRadius)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("card: fill badge %d: %w", i, err)
		}

		dc.SetHexColor(BadgeTextColor)
		w, _ := dc.MeasureString(slot)
		dc.DrawString(slot, BadgeTextX(i, w), BadgeTextBaseline())
	}

	dc.SetHexColor(TextColor)
	dc.SetFont(c.calorie)
	dc.DrawString(content.Calories, Margin, CalorieBaseline)

	// Lines past the bottom edge are clipped by the canvas
	dc.SetFont(c.dish)
	for i, dish := range content.Dishes {
		dc.DrawString(dish, Margin, DishBaseline(i))
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("card: flush: %w", err)
	}
	return &RenderedImage{Image: dc.Image()}, nil
}
