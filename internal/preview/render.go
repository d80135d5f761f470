// Package preview renders a top-down WebP overview of a placement plan.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gsa-map-porter/internal/placement"
)

// Options controls Render.
type Options struct {
	Size        int // output edge in pixels
	Supersample int
	// MarkerRadius is in output pixels. Zero picks a size from Size.
	MarkerRadius int
	Backdrop     image.Image
	NoLegend     bool
}

var (
	background = color.NRGBA{24, 26, 30, 255}
	legendBG   = color.NRGBA{0, 0, 0, 160}
	legendText = color.NRGBA{230, 230, 230, 255}
)

const margin = 0.05

// Render draws every actor as a colored marker seen from above, X to the
// right and Y up.
func Render(plan placement.Plan, opts Options) *image.NRGBA {
	size := max(opts.Size, 16)
	ss := max(opts.Supersample, 1)
	radius := opts.MarkerRadius
	if radius <= 0 {
		radius = max(size/200, 2)
	}

	big := size * ss
	canvas := image.NewNRGBA(image.Rect(0, 0, big, big))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	if opts.Backdrop != nil {
		draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), opts.Backdrop, opts.Backdrop.Bounds(), draw.Over, nil)
	}

	proj := newProjection(plan.Actors, big)
	r := radius * ss
	for _, a := range plan.Actors {
		c := a.Color.RGBA()
		p := proj.point(a.Location[0], a.Location[1])
		draw.DrawMask(canvas, image.Rect(p.X-r, p.Y-r, p.X+r+1, p.Y+r+1),
			image.NewUniform(c), image.Point{}, &disc{center: p, r: r}, image.Point{}, draw.Over)
	}

	img := canvas
	if ss > 1 {
		img = Downsample(canvas, size, size)
	}
	if !opts.NoLegend {
		drawLegend(img, plan)
	}
	return img
}

// projection maps plan X/Y onto a square canvas, keeping aspect ratio.
type projection struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
}

func newProjection(actors []placement.Actor, edge int) projection {
	if len(actors) == 0 {
		return projection{scale: 1, offX: float64(edge) / 2, offY: float64(edge) / 2}
	}
	minX, maxX := actors[0].Location[0], actors[0].Location[0]
	minY, maxY := actors[0].Location[1], actors[0].Location[1]
	for _, a := range actors[1:] {
		minX, maxX = min(minX, a.Location[0]), max(maxX, a.Location[0])
		minY, maxY = min(minY, a.Location[1]), max(maxY, a.Location[1])
	}

	usable := float64(edge) * (1 - 2*margin)
	span := max(maxX-minX, maxY-minY)
	scale := 1.0
	if span > 0 {
		scale = usable / span
	}
	return projection{
		minX:  minX,
		maxY:  maxY,
		scale: scale,
		offX:  (float64(edge) - (maxX-minX)*scale) / 2,
		offY:  (float64(edge) - (maxY-minY)*scale) / 2,
	}
}

func (p projection) point(x, y float64) image.Point {
	return image.Pt(int((x-p.minX)*p.scale+p.offX), int((p.maxY-y)*p.scale+p.offY))
}

// disc is a circular alpha mask.
type disc struct {
	center image.Point
	r      int
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(d.center.X-d.r, d.center.Y-d.r, d.center.X+d.r+1, d.center.Y+d.r+1)
}

func (d *disc) At(x, y int) color.Color {
	dx, dy := x-d.center.X, y-d.center.Y
	if dx*dx+dy*dy <= d.r*d.r {
		return color.Alpha{255}
	}
	return color.Alpha{}
}

// drawLegend lists each entity type with its color and actor count in the
// top-left corner.
func drawLegend(img *image.NRGBA, plan placement.Plan) {
	types := make(map[string]placement.Color)
	for _, a := range plan.Actors {
		types[a.Type] = a.Color
	}
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	slices.Sort(names)

	face := basicfont.Face7x13
	const lineH, pad, swatch = 15, 6, 9
	lines := make([]string, len(names))
	width := 0
	for i, n := range names {
		lines[i] = fmt.Sprintf("%s (%d)", n, plan.Folders["/"+n])
		width = max(width, font.MeasureString(face, lines[i]).Ceil())
	}
	if len(lines) == 0 {
		lines = []string{"no actors"}
		width = font.MeasureString(face, lines[0]).Ceil()
	}

	box := image.Rect(pad, pad, pad*3+swatch+width, pad*2+lineH*len(lines))
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(legendBG), image.Point{}, draw.Over)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(legendText), Face: face}
	for i, line := range lines {
		top := pad + pad/2 + i*lineH
		if i < len(names) {
			sw := image.Rect(pad*2, top+2, pad*2+swatch, top+2+swatch)
			draw.Draw(img, sw, image.NewUniform(types[names[i]].RGBA()), image.Point{}, draw.Src)
		}
		d.Dot = fixed.P(pad*3+swatch, top+11)
		d.DrawString(line)
	}
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: encode webp: %w", err)
	}
	return nil
}

// WriteFile encodes img as WebP to path, creating parent directories.
func WriteFile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
