package labels

import (
	"image"

	flatbush "github.com/bmharper/flatbush-go"
	"github.com/fogleman/gg"
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/rle"
)

// Mask is a run-length encoded binary mask (see package rle)
type Mask struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Counts []uint32 `json:"counts"`
}

func NewMask(width, height int, bitmap []byte) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Counts: rle.Compress(bitmap),
	}
}

// Bitmap decodes the mask into a row-major 0/1 bitmap
func (m *Mask) Bitmap() ([]byte, error) {
	b := make([]byte, m.Width*m.Height)
	if err := rle.Decompress(m.Counts, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *Mask) Area() int {
	return rle.Area(m.Counts)
}

// PolylinesToDetections converts polylines into instance-mask detections.
// Every filled polyline produces one detection whose box covers its points, and whose
// mask covers that box. Unfilled polylines are treated as holes: they are cut out of the mask
// of every filled polyline that they overlap. A hole that overlaps nothing is dropped.
func PolylinesToDetections(polylines []*Polyline, frameWidth, frameHeight int) []*Detection {
	filled := []*Polyline{}
	holes := []*Polyline{}
	for _, p := range polylines {
		if p.Filled {
			filled = append(filled, p)
		} else {
			holes = append(holes, p)
		}
	}
	if len(filled) == 0 {
		return nil
	}

	bounds := make([]Rect, len(filled))
	fb := flatbush.NewFlatbush[int32]()
	fb.Reserve(len(filled))
	for i, p := range filled {
		bounds[i] = pixelBounds(p.Points, frameWidth, frameHeight)
		b := bounds[i]
		fb.Add(int32(b.X), int32(b.Y), int32(b.X2()), int32(b.Y2()))
	}
	fb.Finish()

	holesOf := make([][]*Polyline, len(filled))
	for _, h := range holes {
		hb := pixelBounds(h.Points, frameWidth, frameHeight)
		if hb.Area() == 0 {
			continue
		}
		for _, i := range fb.Search(int32(hb.X), int32(hb.Y), int32(hb.X2()), int32(hb.Y2())) {
			if bounds[i].Intersection(hb).Area() > 0 {
				holesOf[i] = append(holesOf[i], h)
			}
		}
	}

	dets := make([]*Detection, 0, len(filled))
	for i, p := range filled {
		det := &Detection{
			Label:       p.Label,
			BoundingBox: bounds[i].Relative(frameWidth, frameHeight),
			Attributes:  gen.CloneMap(p.Attributes),
		}
		if bounds[i].Area() != 0 {
			det.Mask = rasterize(p, holesOf[i], bounds[i], frameWidth, frameHeight)
		}
		dets = append(dets, det)
	}
	return dets
}

func rasterize(p *Polyline, holes []*Polyline, r Rect, frameWidth, frameHeight int) *Mask {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	tracePath(dc, p.Points, r, frameWidth, frameHeight)
	dc.Fill()
	if len(holes) != 0 {
		dc.SetRGB(0, 0, 0)
		for _, h := range holes {
			tracePath(dc, h.Points, r, frameWidth, frameHeight)
		}
		dc.Fill()
	}

	img := dc.Image().(*image.RGBA)
	bitmap := make([]byte, r.Width*r.Height)
	for y := 0; y < r.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < r.Width; x++ {
			if row[x*4] > 127 {
				bitmap[y*r.Width+x] = 1
			}
		}
	}
	return NewMask(r.Width, r.Height, bitmap)
}

// Add each ring as a closed sub-path, translated so that r's origin is (0,0)
func tracePath(dc *gg.Context, rings [][]Point, r Rect, frameWidth, frameHeight int) {
	for _, ring := range rings {
		first := true
		for _, pt := range ring {
			if pt.IsNaN() {
				continue
			}
			x := pt.X*float64(frameWidth) - float64(r.X)
			y := pt.Y*float64(frameHeight) - float64(r.Y)
			if first {
				dc.NewSubPath()
				dc.MoveTo(x, y)
				first = false
			} else {
				dc.LineTo(x, y)
			}
		}
		if !first {
			dc.ClosePath()
		}
	}
}
