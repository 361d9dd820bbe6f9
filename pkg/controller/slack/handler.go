package slack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	slackSvc "github.com/secmon-lab/rapor/pkg/service/slack"
	"github.com/secmon-lab/rapor/pkg/utils/apperr"
	"github.com/slack-go/slack"
)

// maxRequestAge bounds replayed requests
const maxRequestAge = 5 * time.Minute

// Summarizer builds the summary of a month
type Summarizer interface {
	Summarize(ctx context.Context, rawMonth string) (*model.MonthlySummary, error)
}

// Handler answers the /rapor slash command with a monthly summary
type Handler struct {
	signingSecret string
	summarizer    Summarizer
	now           func() time.Time
}

// NewHandler creates a new slash command handler
func NewHandler(signingSecret string, summarizer Summarizer) *Handler {
	return &Handler{
		signingSecret: signingSecret,
		summarizer:    summarizer,
		now:           time.Now,
	}
}

// ServeHTTP handles a slash command request. The command text is an
// optional YYYY-MM month; empty text selects the default month.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, ctx, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.verifySlackSignature(r, body); err != nil {
		ctxlog.From(ctx).Warn("Invalid Slack signature", "error", err)
		writeError(w, ctx, goerr.Wrap(err, "invalid signature"), http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		writeError(w, ctx, goerr.Wrap(err, "failed to parse slash command"), http.StatusBadRequest)
		return
	}

	ctxlog.From(ctx).Info("Slash command received",
		"command", cmd.Command,
		"text", cmd.Text,
		"user", cmd.UserID,
		"channel", cmd.ChannelID,
	)

	summary, err := h.summarizer.Summarize(ctx, strings.TrimSpace(cmd.Text))
	if err != nil {
		writeMsg(w, ctx, ephemeral(ctx, err))
		return
	}

	writeMsg(w, ctx, &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         slackSvc.SummaryFallbackText(summary),
		Blocks:       slack.Blocks{BlockSet: slackSvc.BuildSummaryBlocks(summary)},
	})
}

// ephemeral turns a failed lookup into a reply only the caller sees
func ephemeral(ctx context.Context, err error) *slack.Msg {
	text := "Failed to load the monthly report."
	if apperr.IsUserError(err) {
		text = fmt.Sprintf("No report available: %s. Usage: /rapor [YYYY-MM]", err.Error())
		ctxlog.From(ctx).Info("Slash command rejected", "error", err)
	} else {
		ctxlog.From(ctx).Error("Failed to summarize month", "error", err)
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}

// verifySlackSignature verifies the Slack request signature
func (h *Handler) verifySlackSignature(r *http.Request, body []byte) error {
	if h.signingSecret == "" {
		return goerr.New("signing secret is not configured")
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	if timestamp == "" {
		return goerr.New("missing timestamp header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}
	if age := h.now().Sub(time.Unix(ts, 0)); age > maxRequestAge || age < -maxRequestAge {
		return goerr.New("timestamp too old", goerr.V("timestamp", ts))
	}

	signature := r.Header.Get("X-Slack-Signature")
	if signature == "" {
		return goerr.New("missing signature header")
	}

	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

func writeMsg(w http.ResponseWriter, ctx context.Context, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(msg); err != nil {
		ctxlog.From(ctx).Error("Failed to write slash command response", "error", err)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, ctx context.Context, err error, status int) {
	ctxlog.From(ctx).Debug("Slash command request failed", "error", err, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	message := err.Error()
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		ctxlog.From(ctx).Error("Failed to write error response", "error", err)
	}
}
