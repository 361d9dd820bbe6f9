package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rapor/pkg/domain/model"
)

func TestDecodeIncidents(t *testing.T) {
	data := []byte(`[
  {
    "Takım": "Payment",
    "Süre (.dk)": 45,
    "Başlangıç": "2025-07-03T10:15:00Z",
    "Bitiş": "2025-07-03T11:00:00Z",
    "Konu": "Checkout failures",
    "Ay": "Temmuz",
    "Rapor": "https://example.com/postmortem/1",
    "Kök Sebep Kategorisi": "Bug",
    "Öncelik": "P1"
  },
  {
    "team": "Invoice",
    "duration_minutes": 0,
    "start": "12.07.2025 08:30",
    "end": null,
    "subject": "Delayed invoices",
    "root_cause": "Thirdparty"
  }
]`)

	incidents, err := model.DecodeIncidents(data)
	gt.NoError(t, err).Required()
	gt.A(t, incidents).Length(2)

	first := incidents[0]
	gt.Equal(t, first.Team, "Payment")
	gt.Equal(t, first.DurationMinutes, 45)
	gt.Equal(t, first.Subject, "Checkout failures")
	gt.Equal(t, first.RootCause, "Bug")
	gt.Equal(t, first.Month, "Temmuz")
	gt.True(t, first.Start.Equal(time.Date(2025, 7, 3, 10, 15, 0, 0, time.UTC)))
	gt.V(t, first.End).NotNil()

	second := incidents[1]
	gt.Equal(t, second.Team, "Invoice")
	gt.True(t, second.Start.Equal(time.Date(2025, 7, 12, 8, 30, 0, 0, time.UTC)))
	gt.V(t, second.End).Nil()
}

func TestDecodeIncidentsRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "not an array", data: `{"Takım": "Payment"}`},
		{name: "broken json", data: `[{"Takım": "Payment"`},
		{name: "missing start", data: `[{"Takım": "Payment", "Süre (.dk)": 10}]`},
		{name: "duration as string", data: `[{"Süre (.dk)": "10", "Başlangıç": "2025-07-01"}]`},
		{name: "fractional duration", data: `[{"Süre (.dk)": 10.5, "Başlangıç": "2025-07-01"}]`},
		{name: "negative duration", data: `[{"Süre (.dk)": -1, "Başlangıç": "2025-07-01"}]`},
		{name: "team as number", data: `[{"Takım": 3, "Başlangıç": "2025-07-01"}]`},
		{name: "unparsable start", data: `[{"Başlangıç": "yesterday"}]`},
		{name: "unparsable end", data: `[{"Başlangıç": "2025-07-01", "Bitiş": "later"}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.DecodeIncidents([]byte(tc.data))
			gt.Error(t, err)
			gt.B(t, goerr.HasTag(err, model.ErrTagMalformed)).True()
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"2025-07-03T10:15:00Z", time.Date(2025, 7, 3, 10, 15, 0, 0, time.UTC)},
		{"2025-07-03T10:15:00+03:00", time.Date(2025, 7, 3, 7, 15, 0, 0, time.UTC)},
		{"2025-07-03 10:15", time.Date(2025, 7, 3, 10, 15, 0, 0, time.UTC)},
		{"2025-07-03", time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)},
		{"03.07.2025 10:15", time.Date(2025, 7, 3, 10, 15, 0, 0, time.UTC)},
		{"July 3, 2025 10:15 AM (GMT+3)", time.Date(2025, 7, 3, 10, 15, 0, 0, time.UTC)},
		{"3rd of July", time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := model.ParseTimestamp(tc.input)
			if tc.expected.IsZero() {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.True(t, got.Equal(tc.expected))
		})
	}
}
