package amath

import(
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
func gammaExpand(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}

// SavePNG writes a simple grayscale rendering of the grid, scaled to
// its value range and gamma-expanded to look normal for human vision.
// Used for dumping pipeline intermediates when debugging.
func (g *Grid)SavePNG(title, filename string) error {
	min, max := g.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{g.Dx(), g.Dy()}})
	for x := 0; x < g.Dx(); x++ {
		for y := 0; y < g.Dy(); y++ {
			v := g.Get(x, y)
			if math.IsNaN(v) {
				v = min
			}
			gray := gammaExpand((v - min) / span)
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 20, 20)
	return dc.SavePNG(filename)
}
