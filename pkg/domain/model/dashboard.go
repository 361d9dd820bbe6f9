package model

import (
	"sort"
	"strings"

	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// TeamAll selects every team in the ongoing project filter
const TeamAll = "all"

// ProgressTone returns the progress bar tone of a completion percentage
func ProgressTone(percent int) types.Tone {
	switch {
	case percent >= 80:
		return types.ToneGreen
	case percent >= 60:
		return types.ToneBlue
	case percent >= 40:
		return types.ToneYellow
	default:
		return types.ToneRed
	}
}

// OutOfSprintTone returns the badge tone of an out-of-sprint total
func OutOfSprintTone(total int) types.Tone {
	switch {
	case total >= 40:
		return types.ToneRed
	case total >= 20:
		return types.ToneOrange
	case total >= 10:
		return types.ToneYellow
	default:
		return types.ToneBlue
	}
}

// ProjectView is a project with its display tones resolved
type ProjectView struct {
	Project
	Percent      int
	HasPercent   bool
	ProgressTone types.Tone
	StatusTone   types.Tone
	TeamTone     types.Tone
}

// NewProjectViews resolves the tones of every project
func NewProjectViews(projects []Project, palette *Palette) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		percent, ok := p.ProgressPercent()
		views = append(views, ProjectView{
			Project:      p,
			Percent:      min(max(percent, 0), 100),
			HasPercent:   ok,
			ProgressTone: ProgressTone(percent),
			StatusTone:   palette.StatusTone(p.Status),
			TeamTone:     palette.TeamTone(p.Group),
		})
	}
	return views
}

// ProjectTeams returns the distinct non-empty groups in first-appearance order
func ProjectTeams(projects []Project) []string {
	var teams []string
	seen := map[string]bool{}
	for _, p := range projects {
		if p.Group == "" || seen[p.Group] {
			continue
		}
		seen[p.Group] = true
		teams = append(teams, p.Group)
	}
	return teams
}

// FilterOngoingProjects drops untitled rows and keeps the projects of team.
// An empty team or TeamAll keeps every team.
func FilterOngoingProjects(projects []Project, team string) []Project {
	var result []Project
	for _, p := range projects {
		if !p.HasTitle() {
			continue
		}
		if team != "" && team != TeamAll && p.Group != team {
			continue
		}
		result = append(result, p)
	}
	return result
}

// IncidentSummary holds the headline numbers of the incident section
type IncidentSummary struct {
	Count                int
	TotalDowntimeMinutes int
	// TopTeam is empty when there are no incidents
	TopTeam      string
	TopTeamCount int
}

// SummarizeIncidents counts incidents, sums their durations and finds the
// team with the most incidents. On a tie the team seen last wins.
func SummarizeIncidents(incidents []Incident) IncidentSummary {
	summary := IncidentSummary{Count: len(incidents)}

	var order []string
	counts := map[string]int{}
	for _, inc := range incidents {
		summary.TotalDowntimeMinutes += inc.DurationMinutes
		if _, ok := counts[inc.Team]; !ok {
			order = append(order, inc.Team)
		}
		counts[inc.Team]++
	}

	for _, team := range order {
		if counts[team] >= summary.TopTeamCount {
			summary.TopTeam = team
			summary.TopTeamCount = counts[team]
		}
	}
	return summary
}

// RecurringTaskView is a recurring task row with its display tones
type RecurringTaskView struct {
	RecurringTask
	RiskTone types.Tone
	TeamTone types.Tone
}

// NewRecurringTaskViews resolves the tones of every recurring task
func NewRecurringTaskViews(tasks []RecurringTask, palette *Palette) []RecurringTaskView {
	views := make([]RecurringTaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, RecurringTaskView{
			RecurringTask: t,
			RiskTone:      palette.RiskTone(t.RiskLevel),
			TeamTone:      palette.TeamTone(t.Team),
		})
	}
	return views
}

// SprintTeamTotal is the out-of-sprint workload of one team
type SprintTeamTotal struct {
	Team    string
	Total   int
	Sprints map[string]int
	Tone    types.Tone
}

// SummarizeOutOfSprint sums the numeric counts per team, keeping the last
// count reported for each sprint, and sorts teams by total descending.
// Rows without a team, sprint or numeric count are skipped.
func SummarizeOutOfSprint(items []OutOfSprintItem) []SprintTeamTotal {
	var order []string
	bySprint := map[string]map[string]int{}
	for _, item := range items {
		team, sprint := strings.TrimSpace(item.Team), strings.TrimSpace(item.Sprint)
		if team == "" || sprint == "" || item.Count == nil {
			continue
		}
		if _, ok := bySprint[team]; !ok {
			bySprint[team] = map[string]int{}
			order = append(order, team)
		}
		bySprint[team][sprint] = *item.Count
	}

	totals := make([]SprintTeamTotal, 0, len(order))
	for _, team := range order {
		total := 0
		for _, n := range bySprint[team] {
			total += n
		}
		totals = append(totals, SprintTeamTotal{
			Team:    team,
			Total:   total,
			Sprints: bySprint[team],
			Tone:    OutOfSprintTone(total),
		})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals
}
