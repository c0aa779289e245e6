package renderer

import (
	"strings"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// DefaultNearBlackLuminance is the luminance below which a color is treated as invisible on the board.
const DefaultNearBlackLuminance = 0.12

var forbiddenColors = map[string]struct{}{
	"#000":        {},
	"#000000":     {},
	"#000f":       {},
	"#000000ff":   {},
	"black":       {},
	"rgb(0,0,0)":  {},
	"transparent": {},
}

// ResolveColor turns a plan color string into a paintable color. Empty, unparsable and
// near-black colors become fallback so nothing is drawn black on the dark board.
//
// Parameters:
//   - s: the color string from the plan
//   - fallback: the default foreground color
//   - threshold: luminance below which a color is replaced
//
// Returns:
//   - common.Color: the color to paint with
func ResolveColor(s string, fallback common.Color, threshold float64) common.Color {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	if key == "" {
		return fallback
	}
	if _, bad := forbiddenColors[key]; bad {
		return fallback
	}
	c, err := common.ParseColor(key)
	if err != nil || c.A == 0 || c.Luminance() < threshold {
		return fallback
	}
	return c
}
