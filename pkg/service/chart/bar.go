package chart

import (
	"math"
	"time"

	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// Bar chart geometry in a 400x200 viewBox
const (
	BarWindow    = 6
	BarWidth     = 40.0
	BarSpacing   = 10.0
	BarStartX    = 70.0
	BarMaxHeight = 160.0
	BarBaseline  = 200.0
	// maxGridSteps caps the number of horizontal grid lines
	maxGridSteps = 8
)

// Bar is the incident count of one calendar month
type Bar struct {
	Month  types.Month
	Label  string
	Count  int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// LabelX returns the horizontal center of the bar
func (b Bar) LabelX() float64 {
	return b.X + b.Width/2
}

// Tick is a horizontal grid line
type Tick struct {
	Value int
	Y     float64
}

// BarChart is the monthly incident distribution over a trailing window
type BarChart struct {
	Bars []Bar
	// Max is the scale of the chart, at least 1
	Max   int
	Ticks []Tick
}

// BuildBarChart buckets incidents by the calendar month written in their
// start time, without converting zones, and returns the six months ending
// with the month of now, oldest first. Months without incidents are shown
// as zero bars.
func BuildBarChart(incidents []model.Incident, now time.Time) *BarChart {
	counts := map[types.Month]int{}
	for _, inc := range incidents {
		counts[types.MonthOf(inc.Start)]++
	}

	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	chart := &BarChart{Max: 1}

	months := make([]time.Time, 0, BarWindow)
	for i := BarWindow - 1; i >= 0; i-- {
		m := current.AddDate(0, -i, 0)
		months = append(months, m)
		chart.Max = max(chart.Max, counts[types.MonthOf(m)])
	}

	for i, m := range months {
		count := counts[types.MonthOf(m)]
		height := float64(count) / float64(chart.Max) * BarMaxHeight
		chart.Bars = append(chart.Bars, Bar{
			Month:  types.MonthOf(m),
			Label:  m.Format("Jan"),
			Count:  count,
			X:      BarStartX + float64(i)*(BarWidth+BarSpacing),
			Y:      BarBaseline - height,
			Width:  BarWidth,
			Height: height,
		})
	}

	chart.Ticks = gridTicks(chart.Max)
	return chart
}

// gridTicks spaces at most maxGridSteps lines evenly up to max. Ticks that
// would land above the top of the chart are dropped.
func gridTicks(maxCount int) []Tick {
	steps := min(maxCount, maxGridSteps)
	step := int(math.Ceil(float64(maxCount) / float64(steps)))

	var ticks []Tick
	for i := 0; i <= steps; i++ {
		value := i * step
		if value > maxCount {
			break
		}
		ticks = append(ticks, Tick{
			Value: value,
			Y:     BarBaseline - float64(value)*(BarMaxHeight/float64(maxCount)),
		})
	}
	return ticks
}
