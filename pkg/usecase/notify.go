package usecase

import (
	"context"
	"net/url"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	slackSvc "github.com/secmon-lab/rapor/pkg/service/slack"
	"github.com/slack-go/slack"
)

// NotifyUseCase posts monthly summaries to Slack
type NotifyUseCase struct {
	report       *ReportUseCase
	slackClient  interfaces.SlackClient
	dashboardURL string
}

// NewNotifyUseCase creates a new NotifyUseCase. dashboardURL is optional and
// adds a link to the month's dashboard.
func NewNotifyUseCase(report *ReportUseCase, slackClient interfaces.SlackClient, dashboardURL string) *NotifyUseCase {
	return &NotifyUseCase{
		report:       report,
		slackClient:  slackClient,
		dashboardURL: dashboardURL,
	}
}

// Summarize builds the summary of a month without posting it
func (uc *NotifyUseCase) Summarize(ctx context.Context, rawMonth string) (*model.MonthlySummary, error) {
	month, err := uc.report.ResolveMonth(ctx, rawMonth)
	if err != nil {
		return nil, err
	}

	report, err := uc.report.GetMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	summary := model.NewMonthlySummary(report, report.Title())
	if uc.dashboardURL != "" {
		link, err := url.Parse(uc.dashboardURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid dashboard URL", goerr.V("url", uc.dashboardURL))
		}
		q := link.Query()
		q.Set("month", month.String())
		link.RawQuery = q.Encode()
		summary.DashboardURL = link.String()
	}
	return summary, nil
}

// Notify posts the summary of a month to channelID
func (uc *NotifyUseCase) Notify(ctx context.Context, rawMonth, channelID string) error {
	if channelID == "" {
		return goerr.New("slack channel is required")
	}
	if uc.slackClient == nil {
		return goerr.New("slack client is not configured")
	}

	summary, err := uc.Summarize(ctx, rawMonth)
	if err != nil {
		return err
	}

	_, ts, err := uc.slackClient.PostMessage(ctx, channelID,
		slack.MsgOptionText(slackSvc.SummaryFallbackText(summary), false),
		slack.MsgOptionBlocks(slackSvc.BuildSummaryBlocks(summary)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post monthly summary",
			goerr.V("month", summary.Month),
			goerr.V("channel", channelID))
	}

	ctxlog.From(ctx).Info("Monthly summary posted",
		"month", summary.Month,
		"channel", channelID,
		"ts", ts,
	)
	return nil
}
