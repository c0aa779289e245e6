// Package tween evaluates the post-draw motion attached to plan items.
package tween

import (
	"slices"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultEase is used when an AnimateSpec names no ease or an unknown one.
const DefaultEase = "power1.out"

type family struct {
	in, out, inOut ease.TweenFunc
}

// power1..power4 are the quad..quint curves under their GSAP-style names.
var families = map[string]family{
	"power1":  {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
	"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
	"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
}

var eases = map[string]ease.TweenFunc{
	"none":   ease.Linear,
	"linear": ease.Linear,
}

func init() {
	for name, f := range families {
		eases[name+".in"] = f.in
		eases[name+".out"] = f.out
		eases[name+".inout"] = f.inOut
		eases[name] = f.out
	}
}

// Ease looks up an easing function by name. Names are case-insensitive and follow the
// "family.direction" form ("power2.out", "sine.inOut"); a bare family means its out variant.
//
// Parameters:
//   - name: the ease name
//
// Returns:
//   - ease.TweenFunc: the easing function, DefaultEase if the name is empty or unknown
//   - bool: false if the name was not recognized
func Ease(name string) (ease.TweenFunc, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return eases[DefaultEase], true
	}
	if f, ok := eases[key]; ok {
		return f, true
	}
	return eases[DefaultEase], false
}

// Progress eases linear progress t in [0, 1] with fn. Values outside [0, 1] are clamped; the
// result may overshoot for back and elastic curves.
func Progress(fn ease.TweenFunc, t float64) float64 {
	v, _ := gween.New(0, 1, 1, fn).Set(float32(t))
	return float64(v)
}

// Names returns the recognized ease names, sorted.
func Names() []string {
	out := make([]string, 0, len(eases))
	for k := range eases {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
