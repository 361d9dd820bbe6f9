package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// RecurringTask represents the recurring request analysis of one team
type RecurringTask struct {
	Team         string `json:"team"`
	RequestCount int    `json:"request_count"`
	ReopenCount  int    `json:"reopen_count"`
	ReopenRate   string `json:"reopen_rate,omitempty"` // e.g. "12%"
	RiskLevel    string `json:"risk_level,omitempty"`
}

// LifecycleTask holds the average task lifecycle durations of one team
type LifecycleTask struct {
	Team            string  `json:"team"`
	LeadAverage     float64 `json:"lead_average"`
	CycleAverage    float64 `json:"cycle_average"`
	ReactionAverage float64 `json:"reaction_average"`
}

var (
	colTechOpsTeam     = []string{"Teknoloji İlgili Ekip", "team"}
	colRequestCount    = []string{"Talep Sayısı ↓", "Talep Sayısı", "request_count"}
	colReopenCount     = []string{"Tekrar Açılma", "reopen_count"}
	colReopenRate      = []string{"Tekrar Açılma Oranı", "reopen_rate"}
	colRiskLevel       = []string{"Risk Seviyesi", "risk_level"}
	colLeadAverage     = []string{"Lead Ort. ↓", "Lead Ort.", "lead_average"}
	colCycleAverage    = []string{"Cycle Ort.", "cycle_average"}
	colReactionAverage = []string{"Reaction Ort.", "reaction_average"}
)

// DecodeRecurringTasks parses a recurring task analysis file
func DecodeRecurringTasks(data []byte) ([]RecurringTask, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	tasks := make([]RecurringTask, 0, len(records))
	for i, r := range records {
		task, err := decodeRecurringTask(r)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid recurring task row", goerr.V("index", i))
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func decodeRecurringTask(r record) (*RecurringTask, error) {
	var (
		task RecurringTask
		err  error
	)

	if task.Team, err = r.str(colTechOpsTeam...); err != nil {
		return nil, err
	}
	if task.RequestCount, err = r.int(colRequestCount...); err != nil {
		return nil, err
	}
	if task.ReopenCount, err = r.int(colReopenCount...); err != nil {
		return nil, err
	}
	if task.ReopenRate, err = r.str(colReopenRate...); err != nil {
		return nil, err
	}
	if task.RiskLevel, err = r.str(colRiskLevel...); err != nil {
		return nil, err
	}
	return &task, nil
}

// DecodeLifecycleTasks parses a task lifecycle file
func DecodeLifecycleTasks(data []byte) ([]LifecycleTask, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	tasks := make([]LifecycleTask, 0, len(records))
	for i, r := range records {
		task, err := decodeLifecycleTask(r)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid lifecycle task row", goerr.V("index", i))
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func decodeLifecycleTask(r record) (*LifecycleTask, error) {
	var (
		task LifecycleTask
		err  error
	)

	if task.Team, err = r.str(colTechOpsTeam...); err != nil {
		return nil, err
	}
	if task.LeadAverage, err = r.float(colLeadAverage...); err != nil {
		return nil, err
	}
	if task.CycleAverage, err = r.float(colCycleAverage...); err != nil {
		return nil, err
	}
	if task.ReactionAverage, err = r.float(colReactionAverage...); err != nil {
		return nil, err
	}
	return &task, nil
}
