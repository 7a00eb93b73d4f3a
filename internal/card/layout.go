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
	"fmt"
	"time"
)

// Canvas geometry. Every position on the card derives from these constants.
const (
	CanvasSize = 1080
	Margin     = 60.0

	TitleBaseline = 130.0
	TitleSize     = 56.0
	LabelSize     = 40.0

	BadgeCount  = 3
	BadgeTop    = 190.0
	BadgeHeight = 90.0
	BadgeGap    = 30.0
	BadgeRadius = 16.0
	BadgeSize   = 38.0
	BadgeWidth  = (CanvasSize - 2*Margin - (BadgeCount-1)*BadgeGap) / BadgeCount

	CalorieBaseline = 370.0
	CalorieSize     = 40.0

	DishTop        = 460.0
	DishLineHeight = 72.0
	DishSize       = 44.0

	// badgeBaselineRatio places a label's baseline below the badge centre by
	// this fraction of the font size, which visually centres Hangul glyphs.
	badgeBaselineRatio = 0.35
)

// Palette
const (
	BackgroundColor = "#FFF6E5"
	TextColor       = "#2B2B2B"
	BadgeColor      = "#F4A259"
	BadgeTextColor  = "#FFFFFF"
)

// Title is the headline drawn at the top left of every card. It always names
// breakfast and always uses the render date.
func Title(renderedAt time.Time) string {
	return fmt.Sprintf("%d월%d일 오늘의 아침은", int(renderedAt.Month()), renderedAt.Day())
}

// LabelX returns the x of a label of the given width right aligned against the
// canvas margin.
func LabelX(width float64) float64 {
	return CanvasSize - width - Margin
}

// BadgeX returns the left edge of the i-th badge.
func BadgeX(i int) float64 {
	return Margin + float64(i)*(BadgeWidth+BadgeGap)
}

// BadgeTextX centres a label of the given width inside the i-th badge.
func BadgeTextX(i int, width float64) float64 {
	return BadgeX(i) + (BadgeWidth-width)/2
}

// BadgeTextBaseline is shared by every badge label.
func BadgeTextBaseline() float64 {
	return BadgeTop + BadgeHeight/2 + BadgeSize*badgeBaselineRatio
}

// DishBaseline returns the baseline of the i-th dish line.
func DishBaseline(i int) float64 {
	return DishTop + float64(i)*DishLineHeight
}
