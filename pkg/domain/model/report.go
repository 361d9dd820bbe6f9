package model

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// MonthReport is every category loaded for one month. Categories without a
// source file are absent, not empty.
type MonthReport struct {
	Month             types.Month
	Config            *MonthConfig
	CompletedProjects []Project
	OngoingProjects   []Project
	Incidents         []Incident
	InfraDevOps       []Project
	Security          []Project
	RecurringTasks    []RecurringTask
	LifecycleTasks    []LifecycleTask
	OutOfSprint       []OutOfSprintItem

	present map[types.Category]bool
}

// NewMonthReport creates an empty report for month
func NewMonthReport(month types.Month) *MonthReport {
	return &MonthReport{
		Month:   month,
		present: make(map[types.Category]bool),
	}
}

// DecodeCategory parses the data of a list category. The config category
// has its own formats, see ParseMonthConfig.
func DecodeCategory(category types.Category, data []byte) (any, error) {
	var (
		v   any
		err error
	)

	switch category {
	case types.CategoryCompletedProjects,
		types.CategoryOngoingProjects,
		types.CategoryInfraDevOps,
		types.CategorySecurity:
		v, err = DecodeProjects(data)
	case types.CategoryIncidentReport:
		v, err = DecodeIncidents(data)
	case types.CategoryTechOpsRecurringTasks:
		v, err = DecodeRecurringTasks(data)
	case types.CategoryTechOpsLifecycleTasks:
		v, err = DecodeLifecycleTasks(data)
	case types.CategoryOutOfSprint:
		v, err = DecodeOutOfSprintItems(data)
	default:
		return nil, goerr.Wrap(ErrUnknownCategory, "no list decoder for category",
			goerr.V("category", category))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode category", goerr.V("category", category))
	}
	return v, nil
}

// Set stores decoded category data and marks the category as present
func (r *MonthReport) Set(category types.Category, data any) error {
	ok := false

	switch category {
	case types.CategoryConfig:
		var cfg *MonthConfig
		if cfg, ok = data.(*MonthConfig); ok {
			r.Config = cfg
		}
	case types.CategoryCompletedProjects:
		r.CompletedProjects, ok = data.([]Project)
	case types.CategoryOngoingProjects:
		r.OngoingProjects, ok = data.([]Project)
	case types.CategoryIncidentReport:
		r.Incidents, ok = data.([]Incident)
	case types.CategoryInfraDevOps:
		r.InfraDevOps, ok = data.([]Project)
	case types.CategorySecurity:
		r.Security, ok = data.([]Project)
	case types.CategoryTechOpsRecurringTasks:
		r.RecurringTasks, ok = data.([]RecurringTask)
	case types.CategoryTechOpsLifecycleTasks:
		r.LifecycleTasks, ok = data.([]LifecycleTask)
	case types.CategoryOutOfSprint:
		r.OutOfSprint, ok = data.([]OutOfSprintItem)
	default:
		return goerr.Wrap(ErrUnknownCategory, "cannot set category", goerr.V("category", category))
	}

	if !ok {
		return goerr.New("data type does not match category",
			goerr.V("category", category),
			goerr.V("type", fmt.Sprintf("%T", data)))
	}
	if r.present == nil {
		r.present = make(map[types.Category]bool)
	}
	r.present[category] = true
	return nil
}

// Get returns the data of a present category
func (r *MonthReport) Get(category types.Category) (any, bool) {
	if !r.present[category] {
		return nil, false
	}

	switch category {
	case types.CategoryConfig:
		return r.Config, true
	case types.CategoryCompletedProjects:
		return r.CompletedProjects, true
	case types.CategoryOngoingProjects:
		return r.OngoingProjects, true
	case types.CategoryIncidentReport:
		return r.Incidents, true
	case types.CategoryInfraDevOps:
		return r.InfraDevOps, true
	case types.CategorySecurity:
		return r.Security, true
	case types.CategoryTechOpsRecurringTasks:
		return r.RecurringTasks, true
	case types.CategoryTechOpsLifecycleTasks:
		return r.LifecycleTasks, true
	case types.CategoryOutOfSprint:
		return r.OutOfSprint, true
	}
	return nil, false
}

// Has reports whether the category was present
func (r *MonthReport) Has(category types.Category) bool {
	return r.present[category]
}

// Categories returns the present categories in display order
func (r *MonthReport) Categories() []types.Category {
	var result []types.Category
	for _, c := range types.AllCategories() {
		if r.present[c] {
			result = append(result, c)
		}
	}
	return result
}

// MarshalJSON encodes the report as an object keyed by category name
func (r *MonthReport) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.present))
	for _, c := range r.Categories() {
		v, _ := r.Get(c)
		out[c.String()] = v
	}
	return json.Marshal(out)
}

// Title returns the display name of the month, e.g. "Temmuz 2025", falling
// back to the month key when no configuration names it
func (r *MonthReport) Title() string {
	if r.Config != nil && r.Config.TargetMonthName != "" {
		return fmt.Sprintf("%s %d", r.Config.TargetMonthName, r.Config.TargetYear)
	}
	return r.Month.String()
}
