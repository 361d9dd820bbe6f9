package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	slackSvc "github.com/secmon-lab/rapor/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack configuration
type Slack struct {
	OAuthToken    string
	SigningSecret string
	Channel       string
	DashboardURL  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token for API access",
			Category:    "Slack",
			Sources:     cli.EnvVars("RAPOR_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret; enables the /rapor slash command endpoint",
			Category:    "Slack",
			Sources:     cli.EnvVars("RAPOR_SLACK_SIGNING_SECRET"),
			Destination: &s.SigningSecret,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post the monthly summary to",
			Category:    "Slack",
			Sources:     cli.EnvVars("RAPOR_SLACK_CHANNEL"),
			Destination: &s.Channel,
		},
		&cli.StringFlag{
			Name:        "dashboard-url",
			Usage:       "Public dashboard URL linked from the summary",
			Category:    "Slack",
			Sources:     cli.EnvVars("RAPOR_DASHBOARD_URL"),
			Destination: &s.DashboardURL,
		},
	}
}

// Configure creates and returns a Slack client
func (s *Slack) Configure() (interfaces.SlackClient, error) {
	if !s.IsConfigured() {
		return nil, goerr.New("slack OAuth token is required. Please provide RAPOR_SLACK_OAUTH_TOKEN")
	}
	return slackSvc.NewClientAdapter(s.OAuthToken), nil
}

// IsCommandEnabled checks if slash command requests can be verified
func (s *Slack) IsCommandEnabled() bool {
	return s.SigningSecret != ""
}

// IsConfigured checks if Slack is properly configured for posting
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.Bool("has_signing_secret", s.SigningSecret != ""),
		slog.String("channel", s.Channel),
		slog.String("dashboard_url", s.DashboardURL),
	)
}
