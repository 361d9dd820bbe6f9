package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Incident represents a production incident of the reporting month
type Incident struct {
	Team            string     `json:"team"`
	DurationMinutes int        `json:"duration_minutes"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	Subject         string     `json:"subject"`
	Month           string     `json:"month,omitempty"` // month label as written in the sheet
	ReportURL       string     `json:"report_url,omitempty"`
	RootCause       string     `json:"root_cause"` // e.g. "Bug", "Deploy", "Thirdparty"
}

var (
	colIncidentTeam      = []string{"Takım", "team"}
	colIncidentDuration  = []string{"Süre (.dk)", "duration_minutes"}
	colIncidentStart     = []string{"Başlangıç", "start"}
	colIncidentEnd       = []string{"Bitiş", "end"}
	colIncidentSubject   = []string{"Konu", "subject"}
	colIncidentMonth     = []string{"Ay", "month"}
	colIncidentReport    = []string{"Rapor", "report_url"}
	colIncidentRootCause = []string{"Kök Sebep Kategorisi", "root_cause"}
)

// timestampLayouts are the formats seen in exported incident sheets.
// Timestamps without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006",
}

// ParseTimestamp parses an incident timestamp in any supported layout
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// Sheet exports append the zone as " (GMT+3)"; it carries no offset we can trust.
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, goerr.New("unsupported timestamp format",
		goerr.V("value", s),
		goerr.T(ErrTagMalformed))
}

// DecodeIncidents parses an incident report file
func DecodeIncidents(data []byte) ([]Incident, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	incidents := make([]Incident, 0, len(records))
	for i, r := range records {
		inc, err := decodeIncident(r)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid incident row", goerr.V("index", i))
		}
		incidents = append(incidents, *inc)
	}
	return incidents, nil
}

func decodeIncident(r record) (*Incident, error) {
	var (
		inc Incident
		err error
	)

	if inc.Team, err = r.str(colIncidentTeam...); err != nil {
		return nil, err
	}
	if inc.DurationMinutes, err = r.int(colIncidentDuration...); err != nil {
		return nil, err
	}
	if inc.Subject, err = r.str(colIncidentSubject...); err != nil {
		return nil, err
	}
	if inc.Month, err = r.str(colIncidentMonth...); err != nil {
		return nil, err
	}
	if inc.ReportURL, err = r.str(colIncidentReport...); err != nil {
		return nil, err
	}
	if inc.RootCause, err = r.str(colIncidentRootCause...); err != nil {
		return nil, err
	}
	if inc.DurationMinutes < 0 {
		return nil, goerr.New("duration must not be negative",
			goerr.V("duration", inc.DurationMinutes),
			goerr.T(ErrTagMalformed))
	}

	start, err := r.requiredStr(colIncidentStart...)
	if err != nil {
		return nil, err
	}
	if inc.Start, err = ParseTimestamp(start); err != nil {
		return nil, goerr.Wrap(err, "invalid start timestamp")
	}

	end, err := r.str(colIncidentEnd...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(end) != "" {
		t, err := ParseTimestamp(end)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid end timestamp")
		}
		inc.End = &t
	}

	return &inc, nil
}
