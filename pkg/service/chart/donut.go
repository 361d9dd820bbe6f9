package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/secmon-lab/rapor/pkg/domain/model"
)

// Donut geometry in a 100x100 viewBox
const (
	DonutCenter      = 50.0
	DonutRadius      = 35.0
	DonutInnerRadius = 20.0
	// DonutStartAngle points at 12 o'clock; angles grow clockwise
	DonutStartAngle = -90.0
)

// UnknownRootCause labels incidents without a root cause category
const UnknownRootCause = "Unknown"

// Slice is one root cause wedge of the donut
type Slice struct {
	Category   string
	Count      int
	Percentage float64
	StartAngle float64
	EndAngle   float64
	Color      string
	// Path is the SVG path data of the annular wedge
	Path string
}

// Sweep returns the angular size of the slice in degrees
func (s Slice) Sweep() float64 {
	return s.EndAngle - s.StartAngle
}

// Donut is the root cause distribution of a set of incidents
type Donut struct {
	Total  int
	Slices []Slice
}

// BuildDonut counts incidents per root cause in first-appearance order and
// lays the counts out as contiguous wedges starting at the top
func BuildDonut(incidents []model.Incident, palette *model.Palette) *Donut {
	if palette == nil {
		palette = model.DefaultPalette()
	}

	var order []string
	counts := map[string]int{}
	for _, inc := range incidents {
		category := strings.TrimSpace(inc.RootCause)
		if category == "" {
			category = UnknownRootCause
		}
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	donut := &Donut{Total: len(incidents)}
	if donut.Total == 0 {
		return donut
	}

	angle := DonutStartAngle
	for _, category := range order {
		count := counts[category]
		percentage := float64(count) / float64(donut.Total) * 100
		sweep := percentage / 100 * 360

		donut.Slices = append(donut.Slices, Slice{
			Category:   category,
			Count:      count,
			Percentage: percentage,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			Color:      palette.RootCauseColor(category),
			Path:       wedgePath(angle, angle+sweep),
		})
		angle += sweep
	}

	return donut
}

// wedgePath draws an annular wedge from start to end degrees. A full turn
// cannot be expressed as one arc, so it becomes a ring of two half arcs
// per radius, meant for fill-rule="evenodd".
func wedgePath(start, end float64) string {
	if end-start >= 360-1e-9 {
		mid := start + 180
		ox1, oy1 := polar(DonutRadius, start)
		ox2, oy2 := polar(DonutRadius, mid)
		ix1, iy1 := polar(DonutInnerRadius, start)
		ix2, iy2 := polar(DonutInnerRadius, mid)

		return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s A %s %s 0 1 1 %s %s Z M %s %s A %s %s 0 1 0 %s %s A %s %s 0 1 0 %s %s Z",
			num(ox1), num(oy1), num(DonutRadius), num(DonutRadius), num(ox2), num(oy2),
			num(DonutRadius), num(DonutRadius), num(ox1), num(oy1),
			num(ix1), num(iy1), num(DonutInnerRadius), num(DonutInnerRadius), num(ix2), num(iy2),
			num(DonutInnerRadius), num(DonutInnerRadius), num(ix1), num(iy1))
	}

	largeArc := 0
	if end-start > 180 {
		largeArc = 1
	}

	x1, y1 := polar(DonutRadius, start)
	x2, y2 := polar(DonutRadius, end)
	ix1, iy1 := polar(DonutInnerRadius, start)
	ix2, iy2 := polar(DonutInnerRadius, end)

	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s L %s %s A %s %s 0 %d 0 %s %s Z",
		num(x1), num(y1), num(DonutRadius), num(DonutRadius), largeArc, num(x2), num(y2),
		num(ix2), num(iy2), num(DonutInnerRadius), num(DonutInnerRadius), largeArc, num(ix1), num(iy1))
}

func polar(radius, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return DonutCenter + radius*math.Cos(rad), DonutCenter + radius*math.Sin(rad)
}

// num formats a coordinate with at most three decimals
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
