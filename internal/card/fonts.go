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
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// The card font is process wide state, loaded once and never released.
var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

// RegisterFont loads the font used by every card. Only the first call loads
// anything; later calls return the outcome of the first regardless of path.
// An empty path selects the embedded Go Regular font, which has no Hangul
// glyphs and is meant for development only.
func RegisterFont(path string) error {
	fontOnce.Do(func() {
		fontSource, fontErr = loadFont(path)
	})
	return fontErr
}

func loadFont(path string) (*text.FontSource, error) {
	if path == "" {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("card: load embedded font: %w", err)
		}
		return src, nil
	}

	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("card: load font %s: %w", path, err)
	}
	return src, nil
}

// FontName reports the registered font, or "" before registration.
func FontName() string {
	if fontSource == nil {
		return ""
	}
	return fontSource.Name()
}
