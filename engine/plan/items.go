package plan

import (
	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// Kind discriminates the Item variants.
type Kind string

const (
	KindCircle        Kind = "circle"
	KindRectangle     Kind = "rectangle"
	KindPath          Kind = "path"
	KindArrow         Kind = "arrow"
	KindText          Kind = "text"
	KindStrikethrough Kind = "strikethrough"
	KindSoftBody      Kind = "soft-body"
	KindRigidBody     Kind = "rigid-body"
)

// AllKinds lists every Item variant. Code that switches over Kind is expected to handle each of these.
var AllKinds = []Kind{
	KindCircle,
	KindRectangle,
	KindPath,
	KindArrow,
	KindText,
	KindStrikethrough,
	KindSoftBody,
	KindRigidBody,
}

// Item is a drawing command or annotation. The set of implementations is closed:
// only the variant types in this package satisfy it.
type Item interface {
	// Kind returns the variant discriminant.
	//
	// Returns:
	//   - Kind: the item kind
	Kind() Kind

	// Common returns the fields shared by every variant.
	//
	// Returns:
	//   - *Base: pointer to the embedded Base
	Common() *Base

	sealed()
}

// Base holds the fields shared by every item variant.
type Base struct {
	// ID is unique within the plan and is used for cross-references, highlights and retained labels.
	ID string `json:"id"`
	// Color is a CSS-style color string. Near-black values are replaced at render time.
	Color string `json:"color,omitempty"`
	// LineWidth is the stroke width in board units; zero selects the renderer default.
	LineWidth float64 `json:"lineWidth,omitempty"`
	// DrawDelay is the time in seconds after the step starts before the item begins to appear.
	DrawDelay *float64 `json:"drawDelay,omitempty"`
	// DrawDuration is the time in seconds the progressive draw takes.
	DrawDuration *float64 `json:"drawDuration,omitempty"`
	// Animate is an optional tween that starts once the draw completes.
	Animate *AnimateSpec `json:"animate,omitempty"`
}

// Common returns b. Every variant embeds Base, so this method is promoted to all of them.
func (b *Base) Common() *Base { return b }

func (b *Base) sealed() {}

// HasExplicitTiming reports whether both drawDelay and drawDuration are set.
func (b *Base) HasExplicitTiming() bool {
	return b.DrawDelay != nil && b.DrawDuration != nil
}

// Circle is a circle outline, optionally filled once fully drawn.
type Circle struct {
	Base
	Center    Point   `json:"center"`
	Radius    float64 `json:"radius"`
	IsFilled  bool    `json:"isFilled,omitempty"`
	FillColor string  `json:"fillColor,omitempty"`
}

// Rectangle is an axis-aligned rectangle anchored at its top-left corner.
type Rectangle struct {
	Base
	Position  Point   `json:"position"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	IsFilled  bool    `json:"isFilled,omitempty"`
	FillColor string  `json:"fillColor,omitempty"`
}

// Path is a polyline whose vertices may carry quadratic control points.
type Path struct {
	Base
	Points []PathPoint `json:"points"`
	Closed bool        `json:"closed,omitempty"`
}

// Arrow is a straight or quadratic arrow with a head at To.
type Arrow struct {
	Base
	From     Point   `json:"from"`
	To       Point   `json:"to"`
	Control  *Point  `json:"control,omitempty"`
	HeadSize float64 `json:"headSize,omitempty"`
}

// Text is a label. Contextual labels are already known to the viewer and appear immediately at reduced opacity.
type Text struct {
	Base
	Text         string  `json:"text"`
	Position     Point   `json:"position"`
	FontSize     float64 `json:"fontSize,omitempty"`
	Align        string  `json:"align,omitempty"`
	IsContextual bool    `json:"isContextual,omitempty"`
}

// Strikethrough is a wavy line drawn through existing content.
type Strikethrough struct {
	Base
	Points     []PathPoint `json:"points"`
	Amplitude  float64     `json:"amplitude,omitempty"`
	Wavelength float64     `json:"wavelength,omitempty"`
}

// SoftBody seeds a grid of particles joined by springs.
type SoftBody struct {
	Base
	Origin    Point   `json:"origin"`
	Cols      int     `json:"cols"`
	Rows      int     `json:"rows"`
	Spacing   float64 `json:"spacing"`
	Stiffness float64 `json:"stiffness,omitempty"`
	Pinned    []Edge  `json:"pinned,omitempty"`
	FillColor string  `json:"fillColor,omitempty"`
}

// Edge names a side of a soft-body grid.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// Shapes accepted by RigidBody.Shape.
const (
	ShapeCircle    = "circle"
	ShapeRectangle = "rectangle"
)

// RigidBody seeds a single rigid circle or rectangle.
type RigidBody struct {
	Base
	Shape       string      `json:"shape"`
	Center      Point       `json:"center"`
	Radius      float64     `json:"radius,omitempty"`
	Width       float64     `json:"width,omitempty"`
	Height      float64     `json:"height,omitempty"`
	Velocity    common.Vec2 `json:"velocity,omitempty"`
	Mass        float64     `json:"mass,omitempty"`
	Restitution float64     `json:"restitution,omitempty"`
	IsStatic    bool        `json:"isStatic,omitempty"`
}

func (*Circle) Kind() Kind        { return KindCircle }
func (*Rectangle) Kind() Kind     { return KindRectangle }
func (*Path) Kind() Kind          { return KindPath }
func (*Arrow) Kind() Kind         { return KindArrow }
func (*Text) Kind() Kind          { return KindText }
func (*Strikethrough) Kind() Kind { return KindStrikethrough }
func (*SoftBody) Kind() Kind      { return KindSoftBody }
func (*RigidBody) Kind() Kind     { return KindRigidBody }

var (
	_ Item = &Circle{}
	_ Item = &Rectangle{}
	_ Item = &Path{}
	_ Item = &Arrow{}
	_ Item = &Text{}
	_ Item = &Strikethrough{}
	_ Item = &SoftBody{}
	_ Item = &RigidBody{}
)

// AnimateSpec is a declarative tween that starts once the item's progressive draw completes.
type AnimateSpec struct {
	From     AnimProps `json:"from,omitempty"`
	To       AnimProps `json:"to"`
	Duration float64   `json:"duration"`
	Ease     string    `json:"ease,omitempty"`
	Delay    float64   `json:"delay,omitempty"`
	Repeat   int       `json:"repeat,omitempty"`
	Yoyo     bool      `json:"yoyo,omitempty"`
}

// AnimProps holds the optional animatable properties. X and Y are offsets in board units,
// Rotation is in degrees.
type AnimProps struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}
