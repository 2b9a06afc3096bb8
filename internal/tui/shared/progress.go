package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// colorsDisabled follows the NO_COLOR convention and TERM=dumb.
// internal/output does not read it; its caller passes the color choice in.
var colorsDisabled = os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb")

// GetColorsDisabled reports the current colorsDisabled setting.
func GetColorsDisabled() bool { return colorsDisabled }

// SetColorsDisabledForTesting overrides colorsDisabled; callers must
// restore the saved value with a defer.
func SetColorsDisabledForTesting(v bool) { colorsDisabled = v }

// NewProgressModel creates a new progress bar model with the specified width.
func NewProgressModel(width int) progress.Model {
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = width
	progressBar.ShowPercentage = false // We render percentage ourselves

	if !colorsDisabled {
		progressBar.EmptyColor = dimColorCode
		progressBar.FullColor = accentColorCode
	}

	return progressBar
}

// RenderASCIIProgress renders a progress bar in ASCII format.
// percent should be between 0.0 and 1.0, width is the total width of the bar.
// Returns a string like: "[=========>          ] 45%"
func RenderASCIIProgress(percent float64, width int) string {
	pct := int(percent * ProgressPercentageScale)

	filled := int(percent * float64(width))

	var bar strings.Builder
	bar.WriteString("[")

	const (
		minWideBarWidth    = 3 // Minimum width to show equals before arrow
		arrowSpaceReserved = 2 // Space reserved for arrow and spacing in wide bars
	)

	switch {
	case filled >= width:
		bar.WriteString(strings.Repeat("=", width))
	case percent > 0:
		var equalsCount int
		if filled >= minWideBarWidth {
			equalsCount = filled - arrowSpaceReserved
		} else {
			equalsCount = max(0, filled-1)
		}

		spacesCount := width - equalsCount - 1

		bar.WriteString(strings.Repeat("=", equalsCount))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", spacesCount))
	default:
		bar.WriteString(strings.Repeat(" ", width))
	}

	bar.WriteString("]")

	return fmt.Sprintf("%s %d%%", bar.String(), pct)
}

// RenderProgress renders model using Bubble Tea's styled progress bar, or
// an ASCII fallback when colorsDisabled.
func RenderProgress(model progress.Model, percent float64) string {
	if colorsDisabled {
		return RenderASCIIProgress(percent, model.Width)
	}

	return model.ViewAs(percent)
}
