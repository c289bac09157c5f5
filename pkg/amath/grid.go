package amath

import(
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// A Grid is a 2D grid of float64 intensity values, stored row-major.
// It is the working representation for source images, PSF kernels and
// backgrounds. Stage code treats grids as immutable: operations return
// a new Grid rather than rewriting the receiver.
type Grid struct {
	stride int
	values []float64
}

func NewGrid(w, h int) Grid {
	return Grid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (g *Grid)NewFromThis() Grid        { return NewGrid(g.Dx(), g.Dy()) }
func (g *Grid)Set(x, y int, v float64)  { g.values[g.stride*y + x] = v }
func (g *Grid)Get(x, y int) float64     { return g.values[g.stride*y + x] }
func (g *Grid)Dx() int                  { return g.stride }
func (g *Grid)Dy() int                  { return len(g.values) / g.stride }
func (g *Grid)Values() []float64        { return g.values }

func (g1 *Grid)Copy() Grid {
	g2 := Grid{stride: g1.stride, values: make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return g2
}

func (g1 *Grid)SameShape(g2 *Grid) bool {
	return g1.Dx() == g2.Dx() && g1.Dy() == g2.Dy()
}

// FromRows builds a grid from row-major nested slices; handy in tests
// and for callers holding [][]float64 data.
func FromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, errors.New("amath.FromRows: empty input")
	}
	w := len(rows[0])
	g := NewGrid(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return Grid{}, errors.Errorf("amath.FromRows: ragged row %d (%d != %d)", y, len(row), w)
		}
		copy(g.values[y*w:(y+1)*w], row)
	}
	return g, nil
}

// Scale returns a new grid with every value multiplied by f.
func (g1 *Grid)Scale(f float64) Grid {
	g2 := g1.Copy()
	for i := range g2.values {
		g2.values[i] *= f
	}
	return g2
}

// Add returns g1 + g2 elementwise; the grids must have the same shape.
func (g1 *Grid)Add(g2 *Grid) (Grid, error) {
	if !g1.SameShape(g2) {
		return Grid{}, errors.Errorf("amath.Add: shape mismatch %dx%d vs %dx%d",
			g1.Dx(), g1.Dy(), g2.Dx(), g2.Dy())
	}
	out := g1.Copy()
	for i := range out.values {
		out.values[i] += g2.values[i]
	}
	return out, nil
}

// Sum ignores NaNs, which show up in masked-off pixels.
func (g *Grid)Sum() float64 {
	t := 0.0
	for _, v := range g.values {
		if !math.IsNaN(v) {
			t += v
		}
	}
	return t
}

func (g *Grid)MinMax() (float64, float64) {
	min, max := math.MaxFloat64, -math.MaxFloat64
	for _, v := range g.values {
		if math.IsNaN(v) {
			continue
		}
		if v > max { max = v }
		if v < min { min = v }
	}
	return min, max
}

func (g *Grid)Stats() string {
	min, max := g.MinMax()
	return fmt.Sprintf("grid[%dx%d, vals{%f,%f}, sum %f]", g.Dx(), g.Dy(), min, max, g.Sum())
}
