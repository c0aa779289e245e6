// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec2 is a point or direction on the unbounded whiteboard plane.
// Coordinates are float64 so that repeated resolution of the same plan produces bit-identical output.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V2 is shorthand for constructing a Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return o.Sub(v).Len() }

// Perp returns v rotated 90 degrees counter-clockwise, (-y, x).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Lerp linearly interpolates from v toward o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Normalize returns the unit vector in the direction of v.
// A zero vector is returned unchanged.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{v.X / l, v.Y / l}
}

// Color is a straight-alpha RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// Common colors used by the board.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorBoard       = Color{0x12, 0x14, 0x18, 0xFF} // dark board background
	ColorForeground  = Color{0xF5, 0xF5, 0xF0, 0xFF} // chalk white
	ColorHighlight   = Color{0xFF, 0xD5, 0x4F, 0xFF}
)

// namedColors covers the CSS color names a planner commonly emits.
var namedColors = map[string]Color{
	"black":   {0, 0, 0, 0xFF},
	"white":   {0xFF, 0xFF, 0xFF, 0xFF},
	"red":     {0xFF, 0x00, 0x00, 0xFF},
	"green":   {0x00, 0x80, 0x00, 0xFF},
	"lime":    {0x00, 0xFF, 0x00, 0xFF},
	"blue":    {0x00, 0x00, 0xFF, 0xFF},
	"yellow":  {0xFF, 0xFF, 0x00, 0xFF},
	"orange":  {0xFF, 0xA5, 0x00, 0xFF},
	"purple":  {0x80, 0x00, 0x80, 0xFF},
	"pink":    {0xFF, 0xC0, 0xCB, 0xFF},
	"cyan":    {0x00, 0xFF, 0xFF, 0xFF},
	"magenta": {0xFF, 0x00, 0xFF, 0xFF},
	"gray":    {0x80, 0x80, 0x80, 0xFF},
	"grey":    {0x80, 0x80, 0x80, 0xFF},
	"brown":   {0xA5, 0x2A, 0x2A, 0xFF},
}

// ParseColor parses a CSS-style color string: "#rgb", "#rrggbb", "#rrggbbaa",
// "rgb(r,g,b)", "rgba(r,g,b,a)" or a basic color name.
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - Color: the parsed color
//   - error: an error if the string is not a recognized color
func ParseColor(s string) (Color, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if c, ok := namedColors[str]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(str, "#"); ok {
		return parseHexColor(hex)
	}
	if body, ok := strings.CutPrefix(str, "rgba("); ok {
		return parseFuncColor(strings.TrimSuffix(body, ")"), true)
	}
	if body, ok := strings.CutPrefix(str, "rgb("); ok {
		return parseFuncColor(strings.TrimSuffix(body, ")"), false)
	}
	return Color{}, fmt.Errorf("unrecognized color %q", s)
}

func parseHexColor(hex string) (Color, error) {
	expand := func(c byte) string { return string([]byte{c, c}) }
	switch len(hex) {
	case 3:
		hex = expand(hex[0]) + expand(hex[1]) + expand(hex[2]) + "ff"
	case 4:
		hex = expand(hex[0]) + expand(hex[1]) + expand(hex[2]) + expand(hex[3])
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("invalid hex color length %d", len(hex))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %w", err)
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func parseFuncColor(body string, hasAlpha bool) (Color, error) {
	parts := strings.Split(body, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("expected %d color components, got %d", want, len(parts))
	}
	var out [4]uint8
	out[3] = 0xFF
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color component %q: %w", parts[i], err)
		}
		out[i] = uint8(Clamp(math.Round(v), 0, 255))
	}
	if hasAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid alpha component %q: %w", parts[3], err)
		}
		out[3] = uint8(Clamp(math.Round(a*255), 0, 255))
	}
	return Color{out[0], out[1], out[2], out[3]}, nil
}

// Luminance returns the relative luminance of the color in [0, 1] using Rec. 709 weights.
func (c Color) Luminance() float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

// WithAlpha returns c with its alpha channel multiplied by a (clamped to [0, 1]).
func (c Color) WithAlpha(a float64) Color {
	c.A = uint8(math.Round(float64(c.A) * Clamp(a, 0, 1)))
	return c
}

// RGBA implements color.Color so Color can be handed directly to image/draw.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A) * 0x101
	r = uint32(c.R) * 0x101 * a / 0xFFFF
	g = uint32(c.G) * 0x101 * a / 0xFFFF
	b = uint32(c.B) * 0x101 * a / 0xFFFF
	return r, g, b, a
}

// TextureStagingData holds RGBA pixel data for a frame pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}
