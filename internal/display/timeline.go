package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	markerYear    = '·'
	markerCurrent = '●'
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Timeline draws one marker per year with the current year highlighted and
// the range labelled at both ends, e.g. "1990 ··●·· 1994".
func Timeline(years []int, current int) string {
	if len(years) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d ", years[0])
	for _, y := range years {
		if y == current {
			sb.WriteRune(markerCurrent)
			continue
		}
		sb.WriteRune(markerYear)
	}
	fmt.Fprintf(&sb, " %d", years[len(years)-1])
	return sb.String()
}

// Sparkline draws values as block characters scaled between their min and max.
// NaN values are drawn as spaces.
func Sparkline(values []float64) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = ' '
		case hi == lo:
			out[i] = sparkBlocks[len(sparkBlocks)/2]
		default:
			idx := int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
			out[i] = sparkBlocks[idx]
		}
	}
	return string(out)
}

// Swatch renders text on a true-color background.
func Swatch(c colorful.Color, text string) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s\x1b[0m", r, g, b, text)
}
