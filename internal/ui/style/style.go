// Package style holds the colors shared by the shortcut views.
package style

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ProgressBarCell is one filled or empty cell of the download bar.
const ProgressBarCell = "▉"

var (
	FgColor     = tcell.ColorFloralWhite
	BgColor     = tview.Styles.PrimitiveBackgroundColor
	BorderColor = tcell.NewRGBColor(135, 175, 146) //nolint:mnd

	// tab bar and key hints
	InfoBarItemFgColor = tcell.ColorSilver
	MenuBgColor        = tcell.ColorMediumSeaGreen
	PageHeaderBgColor  = tcell.ColorMediumSeaGreen
	PageHeaderFgColor  = tcell.ColorFloralWhite

	// shortcut and action editors
	DialogBgColor     = tcell.NewRGBColor(38, 38, 38) //nolint:mnd
	DialogBorderColor = tcell.ColorMediumSeaGreen
	DialogFgColor     = tcell.ColorFloralWhite
	ButtonBgColor     = tcell.ColorMediumSeaGreen

	// group headers in the shortcut list
	TableHeaderBgColor = tcell.ColorMediumSeaGreen
	TableHeaderFgColor = tcell.ColorFloralWhite

	// execution progress view
	RunningColor = tcell.NewRGBColor(255, 175, 0) //nolint:mnd
	FailedColor  = tcell.NewRGBColor(215, 0, 0)   //nolint:mnd

	// update download bar
	PrgBgColor  = tcell.ColorDimGray
	PrgBarColor = tcell.ColorDarkOrange
)

// GetColorHex returns the color as a tview color tag value.
func GetColorHex(color tcell.Color) string {
	return fmt.Sprintf("#%06x", color.Hex())
}
