package labels

import (
	"encoding/json"
	"math"
)

// Point is a 2D point. It serializes as [x, y], with NaN written as null.
type Point struct {
	X float64
	Y float64
}

func NaNPoint() Point {
	return Point{X: math.NaN(), Y: math.NaN()}
}

func (p Point) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*float64{nanToNil(p.X), nanToNil(p.Y)})
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var xy [2]*float64
	if err := json.Unmarshal(b, &xy); err != nil {
		return err
	}
	p.X = nilToNaN(xy[0])
	p.Y = nilToNaN(xy[1])
	return nil
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Rect is a rectangle in integer pixel coordinates
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) X2() int {
	return r.X + r.Width
}

func (r Rect) Y2() int {
	return r.Y + r.Height
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) Intersection(b Rect) Rect {
	x1 := max(r.X, b.X)
	y1 := max(r.Y, b.Y)
	x2 := min(r.X2(), b.X2())
	y2 := min(r.Y2(), b.Y2())
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

// Relative returns the rectangle as [x, y, width, height] relative to a frame
func (r Rect) Relative(frameWidth, frameHeight int) [4]float64 {
	fw := float64(frameWidth)
	fh := float64(frameHeight)
	return [4]float64{float64(r.X) / fw, float64(r.Y) / fh, float64(r.Width) / fw, float64(r.Height) / fh}
}

// pixelBounds returns the integer pixel rectangle that covers all of the given relative
// points, clipped to the frame. NaN points are ignored.
func pixelBounds(rings [][]Point, frameWidth, frameHeight int) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			if p.IsNaN() {
				continue
			}
			minX = min(minX, p.X*float64(frameWidth))
			minY = min(minY, p.Y*float64(frameHeight))
			maxX = max(maxX, p.X*float64(frameWidth))
			maxY = max(maxY, p.Y*float64(frameHeight))
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	x1 := max(0, int(math.Floor(minX)))
	y1 := max(0, int(math.Floor(minY)))
	x2 := min(frameWidth, int(math.Ceil(maxX)))
	y2 := min(frameHeight, int(math.Ceil(maxY)))
	return Rect{X: x1, Y: y1, Width: max(0, x2-x1), Height: max(0, y2-y1)}
}
