package canvas

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// Raster is a Canvas backed by a gg drawing context over an in-memory RGBA pixmap.
type Raster interface {
	Canvas

	// Image returns a view of the backing pixmap. The pixels are reused between frames.
	//
	// Returns:
	//   - *image.RGBA: the backing image
	Image() *image.RGBA

	// Pixels returns the frame as tightly packed RGBA staging data for texture upload.
	//
	// Returns:
	//   - common.TextureStagingData: the frame pixels and dimensions
	Pixels() common.TextureStagingData

	// Resize reallocates the backing image when the size changes. The content is cleared.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SavePNG encodes the current frame to a PNG file.
	//
	// Parameters:
	//   - path: the output file path
	//
	// Returns:
	//   - error: an error if the file could not be written
	SavePNG(path string) error
}

type raster struct {
	ctx   *gg.Context
	pm    *gg.Pixmap
	st    style
	saved []style
	// open is true while the current sub-path accepts more segments.
	open bool
	src  *image.Uniform
}

var _ Raster = &raster{}

// NewRaster creates a raster canvas of the given size.
//
// Parameters:
//   - width: the image width in pixels, at least 1
//   - height: the image height in pixels, at least 1
//
// Returns:
//   - Raster: the new canvas
func NewRaster(width, height int) Raster {
	r := &raster{
		st:  defaultStyle(),
		src: image.NewUniform(common.ColorForeground),
	}
	r.allocate(max(width, 1), max(height, 1))
	return r
}

func (r *raster) allocate(width, height int) {
	if r.ctx != nil {
		_ = r.ctx.Close()
	}
	r.pm = gg.NewPixmap(width, height)
	r.ctx = gg.NewContextForPixmap(r.pm)
	r.ctx.SetLineCap(gg.LineCapRound)
	r.ctx.SetLineJoin(gg.LineJoinRound)
	r.saved = r.saved[:0]
	r.open = false
}

func (r *raster) Size() (int, int) {
	return r.pm.Width(), r.pm.Height()
}

func (r *raster) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if w, h := r.Size(); w == width && h == height {
		return
	}
	m := r.ctx.GetTransform()
	r.allocate(width, height)
	r.ctx.SetTransform(m)
}

func (r *raster) Image() *image.RGBA {
	w, h := r.Size()
	return &image.RGBA{Pix: r.pm.Data(), Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}

func (r *raster) Pixels() common.TextureStagingData {
	w, h := r.Size()
	return common.TextureStagingData{Pixels: r.pm.Data(), Width: uint32(w), Height: uint32(h)}
}

func (r *raster) SavePNG(path string) error {
	if err := r.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

func (r *raster) Clear(c common.Color) {
	r.ctx.ClearWithColor(gg.FromColor(c))
}

func (r *raster) Save() {
	r.ctx.Push()
	r.saved = append(r.saved, r.st)
}

func (r *raster) Restore() {
	if len(r.saved) == 0 {
		return
	}
	r.ctx.Pop()
	r.st = r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
}

func (r *raster) Translate(x, y float64) { r.ctx.Translate(x, y) }

func (r *raster) Rotate(theta float64) { r.ctx.Rotate(theta) }

func (r *raster) Scale(sx, sy float64) { r.ctx.Scale(sx, sy) }

func (r *raster) SetTransform(m common.Affine) { r.ctx.SetTransform(toMatrix(m)) }

func (r *raster) Transform() common.Affine { return fromMatrix(r.ctx.GetTransform()) }

func (r *raster) SetAlpha(a float64) { r.st.alpha = common.Clamp01(a) }

func (r *raster) Alpha() float64 { return r.st.alpha }

func (r *raster) SetStrokeColor(c common.Color) { r.st.stroke = c }

func (r *raster) SetFillColor(c common.Color) { r.st.fill = c }

func (r *raster) SetLineWidth(w float64) { r.st.lineWidth = w }

func (r *raster) BeginPath() {
	r.ctx.ClearPath()
	r.open = false
}

func (r *raster) MoveTo(x, y float64) {
	r.ctx.MoveTo(x, y)
	r.open = true
}

func (r *raster) LineTo(x, y float64) {
	if !r.open {
		r.MoveTo(x, y)
		return
	}
	r.ctx.LineTo(x, y)
}

func (r *raster) QuadTo(cx, cy, x, y float64) {
	if !r.open {
		r.MoveTo(cx, cy)
	}
	r.ctx.QuadraticTo(cx, cy, x, y)
}

func (r *raster) Arc(cx, cy, radius, start, end float64) {
	if appendArc(r.ctx, r.open, cx, cy, radius, start, end) {
		r.open = true
	}
}

func (r *raster) ClosePath() {
	if r.open {
		r.ctx.ClosePath()
	}
	r.open = false
}

// Fill and Stroke keep the path so a shape can be filled and then outlined.
func (r *raster) Fill() {
	c := r.st.fill.WithAlpha(r.st.alpha)
	if c.A == 0 {
		return
	}
	r.ctx.SetColor(c)
	_ = r.ctx.FillPreserve()
}

func (r *raster) Stroke() {
	c := r.st.stroke.WithAlpha(r.st.alpha)
	if c.A == 0 || r.st.lineWidth <= 0 {
		return
	}
	r.ctx.SetColor(c)
	r.ctx.SetLineWidth(r.st.lineWidth)
	_ = r.ctx.StrokePreserve()
}

// FillText draws at the transformed baseline position with a face sized by the transform's scale.
// Rotation is not applied to glyphs.
func (r *raster) FillText(s string, x, y, size float64) {
	c := r.st.fill.WithAlpha(r.st.alpha)
	if c.A == 0 || s == "" {
		return
	}
	m := r.Transform()
	p := m.Apply(common.V2(x, y))
	r.src.C = c
	d := &font.Drawer{
		Dst:  r.pm,
		Src:  r.src,
		Face: faceFor(size * m.ScaleFactor()),
		Dot:  fixed.P(int(math.Round(p.X)), int(math.Round(p.Y))),
	}
	d.DrawString(s)
}

func (r *raster) MeasureText(s string, size float64) float64 {
	face := faceFor(size)
	adv := font.MeasureString(face, s)
	return float64(adv) / 64
}

var (
	fontOnce  sync.Once
	fontData  *opentype.Font
	facesMu   sync.Mutex
	faceCache = make(map[int]font.Face)
)

// faceFor returns a Go Regular face at the given pixel size, falling back to basicfont when the
// embedded font cannot be parsed.
func faceFor(size float64) font.Face {
	px := int(math.Round(size))
	if px < 4 {
		px = 4
	}
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err == nil {
			fontData = f
		}
	})
	if fontData == nil {
		return basicfont.Face7x13
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faceCache[px]; ok {
		return face
	}
	face, err := opentype.NewFace(fontData, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	faceCache[px] = face
	return face
}
