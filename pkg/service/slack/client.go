package slack

import (
	"context"

	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/slack-go/slack"
)

// ClientAdapter adapts the Service to the interfaces.SlackClient interface
type ClientAdapter struct {
	service *Service
}

// NewClientAdapter creates a new ClientAdapter
func NewClientAdapter(token string) interfaces.SlackClient {
	return &ClientAdapter{
		service: New(token),
	}
}

// PostMessage implements interfaces.SlackClient
func (a *ClientAdapter) PostMessage(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	return a.service.PostMessage(ctx, channelID, options...)
}

// AuthTestContext implements interfaces.SlackClient
func (a *ClientAdapter) AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error) {
	return a.service.AuthTestContext(ctx)
}
