package slack

import (
	"fmt"

	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/slack-go/slack"
)

// GetIncidentEmoji returns emoji based on the number of incidents in a month
func GetIncidentEmoji(count int) string {
	switch {
	case count >= 10:
		return "🚨"
	case count >= 5:
		return "⚠️"
	case count >= 1:
		return "ℹ️"
	default:
		return "✅"
	}
}

// BuildSummaryBlocks creates the Block Kit message of a monthly summary
func BuildSummaryBlocks(summary *model.MonthlySummary) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType,
				fmt.Sprintf("📊 Monthly report: %s", summary.Title), true, false),
		),
	}

	if cfg := summary.Config; cfg != nil {
		blocks = append(blocks, slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			field("Completed projects", fmt.Sprintf("%d", cfg.NumberOfCompletedProjects)),
			field("Ongoing projects", fmt.Sprintf("%d", cfg.NumberOfOngoingProjects)),
			field("Uptime", cfg.UptimePercentage+"%"),
			field("Deployments", fmt.Sprintf("%d", cfg.NumberOfDeployments)),
			field("Bug fixes", fmt.Sprintf("%d", cfg.NumberOfBugFixes)),
		}, nil))
	} else {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"_No configuration for this month; headline numbers are unavailable._", false, false),
		))
	}

	blocks = append(blocks, slack.NewDividerBlock())

	incidents := summary.Incidents
	incidentText := fmt.Sprintf("%s *%d incidents*, %d minutes of downtime in total",
		GetIncidentEmoji(incidents.Count), incidents.Count, incidents.TotalDowntimeMinutes)
	if incidents.TopTeam != "" {
		incidentText += fmt.Sprintf("\nMost affected team: *%s* (%d)", incidents.TopTeam, incidents.TopTeamCount)
	}
	if summary.TopRootCause != "" {
		incidentText += fmt.Sprintf("\nTop root cause: *%s* (%d)", summary.TopRootCause, summary.TopRootCauseCount)
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, incidentText, false, false), nil, nil,
	))

	if summary.OutOfSprintTotal > 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("🗂 %d items were added outside of sprint planning", summary.OutOfSprintTotal),
				false, false), nil, nil,
		))
	}

	if summary.DashboardURL != "" {
		blocks = append(blocks, slack.NewActionBlock("",
			slack.NewButtonBlockElement("", "",
				slack.NewTextBlockObject(slack.PlainTextType, "Open dashboard", false, false),
			).WithURL(summary.DashboardURL),
		))
	}

	return blocks
}

// SummaryFallbackText is the plain text shown in notifications
func SummaryFallbackText(summary *model.MonthlySummary) string {
	return fmt.Sprintf("Monthly report %s: %d incidents, %d minutes of downtime",
		summary.Title, summary.Incidents.Count, summary.Incidents.TotalDowntimeMinutes)
}

func field(label, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", label, value), false, false)
}
