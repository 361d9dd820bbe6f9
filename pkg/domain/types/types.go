package types

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// monthLayout is the layout of a month key (e.g. "2025-07")
const monthLayout = "2006-01"

// Month represents a reporting month key. It doubles as the directory name
// under the data root, so only well-formed keys are accepted.
type Month string

// ParseMonth validates and normalizes a month key
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", goerr.Wrap(err, "invalid month format", goerr.V("month", s))
	}
	return Month(t.Format(monthLayout)), nil
}

// MonthOf returns the month key containing t
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// String returns the string representation
func (m Month) String() string {
	return string(m)
}

// IsValid checks if the month key is well-formed
func (m Month) IsValid() bool {
	t, err := time.Parse(monthLayout, string(m))
	return err == nil && t.Format(monthLayout) == string(m)
}

// Category represents a kind of monthly data file
type Category string

const (
	CategoryConfig                Category = "config"
	CategoryCompletedProjects     Category = "completed-projects"
	CategoryOngoingProjects       Category = "ongoing-projects"
	CategoryIncidentReport        Category = "incident-report"
	CategoryInfraDevOps           Category = "infra-devops"
	CategorySecurity              Category = "security"
	CategoryTechOpsRecurringTasks Category = "techops-recurring-tasks"
	CategoryTechOpsLifecycleTasks Category = "techops-lifecycle-tasks"
	CategoryOutOfSprint           Category = "out-of-sprint"
)

// AllCategories returns every known category in display order
func AllCategories() []Category {
	return []Category{
		CategoryConfig,
		CategoryCompletedProjects,
		CategoryOngoingProjects,
		CategoryIncidentReport,
		CategoryInfraDevOps,
		CategorySecurity,
		CategoryTechOpsRecurringTasks,
		CategoryTechOpsLifecycleTasks,
		CategoryOutOfSprint,
	}
}

// ParseCategory converts a type key into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", goerr.New("unknown data type", goerr.V("type", s))
	}
	return c, nil
}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryConfig,
		CategoryCompletedProjects,
		CategoryOngoingProjects,
		CategoryIncidentReport,
		CategoryInfraDevOps,
		CategorySecurity,
		CategoryTechOpsRecurringTasks,
		CategoryTechOpsLifecycleTasks,
		CategoryOutOfSprint:
		return true
	default:
		return false
	}
}

// Tone is a named color class understood by the dashboard stylesheet
type Tone string

const (
	ToneGray    Tone = "gray"
	ToneGreen   Tone = "green"
	ToneBlue    Tone = "blue"
	ToneYellow  Tone = "yellow"
	ToneOrange  Tone = "orange"
	ToneRed     Tone = "red"
	TonePurple  Tone = "purple"
	ToneIndigo  Tone = "indigo"
	ToneCyan    Tone = "cyan"
	ToneTeal    Tone = "teal"
	ToneEmerald Tone = "emerald"
	TonePink    Tone = "pink"
	ToneViolet  Tone = "violet"
	ToneRose    Tone = "rose"
	ToneSlate   Tone = "slate"
	ToneAmber   Tone = "amber"
)

// String returns the string representation
func (t Tone) String() string {
	return string(t)
}

// IsValid checks if the tone has a matching style
func (t Tone) IsValid() bool {
	switch t {
	case ToneGray, ToneGreen, ToneBlue, ToneYellow, ToneOrange, ToneRed,
		TonePurple, ToneIndigo, ToneCyan, ToneTeal, ToneEmerald, TonePink,
		ToneViolet, ToneRose, ToneSlate, ToneAmber:
		return true
	default:
		return false
	}
}
