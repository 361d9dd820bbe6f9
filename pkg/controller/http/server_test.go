package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	controller "github.com/secmon-lab/rapor/pkg/controller/http"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/repository"
	"github.com/secmon-lab/rapor/pkg/usecase"
)

func newTestMemory(t *testing.T) *repository.Memory {
	t.Helper()
	mem := repository.NewMemory()

	july := model.NewMonthReport("2025-07")
	gt.NoError(t, july.Set(types.CategoryConfig, &model.MonthConfig{
		TargetYear:                2025,
		TargetMonth:               7,
		TargetMonthName:           "Temmuz",
		NumberOfCompletedProjects: 1,
		NumberOfOngoingProjects:   2,
		UptimePercentage:          "99.9",
		NumberOfDeployments:       40,
	})).Required()
	gt.NoError(t, july.Set(types.CategoryOngoingProjects, []model.Project{
		{Title: "Refund automation", Progress: "65%", Status: "In Progress", Group: "Payment"},
		{Title: "Ledger rewrite", Progress: "30%", Status: "Blocked", Group: "Finance"},
	})).Required()
	gt.NoError(t, july.Set(types.CategoryIncidentReport, []model.Incident{
		{Team: "Payment", DurationMinutes: 30, Start: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), RootCause: "Bug"},
		{Team: "Finance", DurationMinutes: 10, Start: time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC), RootCause: "Deploy"},
	})).Required()
	// Present but empty
	gt.NoError(t, july.Set(types.CategoryInfraDevOps, []model.Project{})).Required()
	gt.NoError(t, mem.Put(july)).Required()

	// A month without configuration
	gt.NoError(t, mem.Put(model.NewMonthReport("2025-06"))).Required()

	return mem
}

// failingSource fails every read
type failingSource struct{}

var errBackend = errors.New("backend unavailable")

func (failingSource) ListMonths(ctx context.Context) ([]types.Month, error) {
	return nil, goerr.Wrap(errBackend, "list")
}

func (failingSource) LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error) {
	return nil, goerr.Wrap(errBackend, "load category")
}

func (failingSource) LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	return nil, goerr.Wrap(errBackend, "load month")
}

func newTestServer(t *testing.T, report *usecase.ReportUseCase) *controller.Server {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC) }
	dashboard := usecase.NewDashboardUseCase(report, nil, usecase.WithClock(now))

	pages, err := controller.NewPageRenderer(nil)
	gt.NoError(t, err).Required()

	server, err := controller.NewServer(context.Background(), ":0", report, dashboard, pages)
	gt.NoError(t, err).Required()
	return server
}

func doRequest(t *testing.T, server *controller.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	return body
}

func TestNewServer_RequiresReportUseCase(t *testing.T) {
	_, err := controller.NewServer(context.Background(), ":0", nil, nil, nil)
	gt.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

	w := doRequest(t, server, http.MethodGet, "/health")
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, w.Header().Get("Content-Type"), "application/json")

	body := decodeBody(t, w)
	gt.Equal(t, body["status"], any("healthy"))
	gt.Equal(t, body["service"], any("rapor"))
}

func TestServer_Data(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

	t.Run("category of an explicit month", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/data?month=2025-07&type=ongoing-projects")
		gt.Equal(t, w.Code, http.StatusOK)

		var projects []model.Project
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects)).Required()
		gt.A(t, projects).Length(2)
		gt.Equal(t, projects[0].Title, "Refund automation")
	})

	t.Run("whole latest month without parameters", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/data")
		gt.Equal(t, w.Code, http.StatusOK)

		body := decodeBody(t, w)
		_, hasConfig := body["config"]
		gt.True(t, hasConfig)
		_, hasIncidents := body["incident-report"]
		gt.True(t, hasIncidents)
		_, hasSecurity := body["security"]
		gt.False(t, hasSecurity)
	})

	testCases := []struct {
		name    string
		target  string
		status  int
		message string
	}{
		{"malformed month", "/api/data?month=2025-13&type=config", http.StatusBadRequest, "invalid month"},
		{"path traversal month", "/api/data?month=../2025-07&type=config", http.StatusBadRequest, "invalid month"},
		{"unknown type", "/api/data?month=2025-07&type=secrets", http.StatusBadRequest, "unknown data type"},
		{"unknown month", "/api/data?month=2024-01&type=config", http.StatusNotFound, "month data not found"},
		{"missing category", "/api/data?month=2025-06&type=config", http.StatusNotFound, "category data not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, server, http.MethodGet, tc.target)
			gt.Equal(t, w.Code, tc.status)

			body := decodeBody(t, w)
			gt.Equal(t, body["error"], any(tc.message))
		})
	}
}

func TestServer_DataBackendFailure(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(failingSource{}, "2025-07"))

	w := doRequest(t, server, http.MethodGet, "/api/data?month=2025-07&type=config")
	gt.Equal(t, w.Code, http.StatusInternalServerError)

	body := decodeBody(t, w)
	gt.Equal(t, body["error"], any("failed to load data"))
	gt.False(t, strings.Contains(w.Body.String(), "backend unavailable"))
}

func TestServer_Months(t *testing.T) {
	t.Run("lists months in order", func(t *testing.T) {
		server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

		w := doRequest(t, server, http.MethodGet, "/api/months")
		gt.Equal(t, w.Code, http.StatusOK)

		var body struct {
			Months []string `json:"months"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Equal(t, body.Months, []string{"2025-06", "2025-07"})
	})

	t.Run("empty source yields an empty list", func(t *testing.T) {
		server := newTestServer(t, usecase.NewReportUseCase(repository.NewMemory(), ""))

		w := doRequest(t, server, http.MethodGet, "/api/months")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.S(t, w.Body.String()).Contains(`"months":[]`)
	})
}

func TestServer_Dashboard(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

	t.Run("renders the latest month", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, w.Header().Get("Content-Type"), "text/html; charset=utf-8")

		body := w.Body.String()
		gt.S(t, body).Contains("Temmuz 2025")
		gt.S(t, body).Contains("Refund automation")
		gt.S(t, body).Contains("tone-purple")
		gt.S(t, body).Contains(`fill-rule="evenodd"`)
		gt.S(t, body).Contains("Jul")
	})

	t.Run("filters ongoing projects by team", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/?month=2025-07&team=Finance")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.S(t, w.Body.String()).Contains("Ledger rewrite")
		gt.False(t, strings.Contains(w.Body.String(), "Refund automation"))
	})

	t.Run("month without configuration", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/?month=2025-06")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.S(t, w.Body.String()).Contains("No configuration for this month")
		gt.S(t, w.Body.String()).Contains("No data file for this month.")
		gt.False(t, strings.Contains(w.Body.String(), "No infrastructure work reported."))
	})

	t.Run("tells empty categories from absent ones", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/?month=2025-07")
		gt.Equal(t, w.Code, http.StatusOK)

		body := w.Body.String()
		gt.S(t, body).Contains("No infrastructure work reported.")
		gt.False(t, strings.Contains(body, "No completed projects."))
		gt.S(t, body).Contains("No data file for this month.")
	})

	t.Run("invalid month renders an error page", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/?month=july")
		gt.Equal(t, w.Code, http.StatusBadRequest)
		gt.S(t, w.Body.String()).Contains("invalid month")
	})

	t.Run("unknown month renders not found", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/?month=2020-01")
		gt.Equal(t, w.Code, http.StatusNotFound)
		gt.S(t, w.Body.String()).Contains("month data not found")
	})
}

func TestServer_Static(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

	t.Run("stylesheet", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/static/style.css")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, w.Header().Get("Content-Type"), "text/css; charset=utf-8")
		gt.S(t, w.Body.String()).Contains(".badge")
	})

	t.Run("missing file", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/static/missing.js")
		gt.Equal(t, w.Code, http.StatusNotFound)
	})

	t.Run("directory is not listed", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/static/")
		gt.Equal(t, w.Code, http.StatusNotFound)
	})
}

func TestServer_RejectsWrites(t *testing.T) {
	server := newTestServer(t, usecase.NewReportUseCase(newTestMemory(t), ""))

	w := doRequest(t, server, http.MethodPost, "/api/data")
	gt.Equal(t, w.Code, http.StatusMethodNotAllowed)
	gt.Equal(t, w.Header().Get("X-Content-Type-Options"), "nosniff")
}

func TestServer_SlackCommand(t *testing.T) {
	report := usecase.NewReportUseCase(newTestMemory(t), "")

	t.Run("not mounted by default", func(t *testing.T) {
		server := newTestServer(t, report)
		w := doRequest(t, server, http.MethodPost, "/hooks/slack/command")
		gt.Equal(t, w.Code, http.StatusNotFound)
	})

	t.Run("mounted with option", func(t *testing.T) {
		var called bool
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		server, err := controller.NewServer(context.Background(), ":0", report, nil, nil,
			controller.WithSlackCommand(handler))
		gt.NoError(t, err).Required()

		w := doRequest(t, server, http.MethodPost, "/hooks/slack/command")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.True(t, called)
	})
}

func TestStatusFromError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid month", goerr.Wrap(model.ErrInvalidMonth, "bad"), http.StatusBadRequest},
		{"unknown category", goerr.Wrap(model.ErrUnknownCategory, "bad"), http.StatusBadRequest},
		{"month not found", goerr.Wrap(model.ErrMonthNotFound, "missing"), http.StatusNotFound},
		{"category not found", goerr.Wrap(model.ErrCategoryNotFound, "missing"), http.StatusNotFound},
		{"malformed data", goerr.New("broken", goerr.T(model.ErrTagMalformed)), http.StatusInternalServerError},
		{"other", errBackend, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := controller.StatusFromError(tc.err)
			gt.Equal(t, status, tc.status)
		})
	}
}

func TestGetContentType(t *testing.T) {
	gt.Equal(t, controller.GetContentType("/style.css"), "text/css; charset=utf-8")
	gt.Equal(t, controller.GetContentType("/logo.svg"), "image/svg+xml")
	gt.Equal(t, controller.GetContentType("/README"), "")
}
