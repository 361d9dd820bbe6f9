package http

import (
	"net/http"

	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// handleData serves one category of a month, or the whole month when the
// type parameter is absent
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	data, err := s.reportUC.GetData(r.Context(), query.Get("month"), query.Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, data)
}

// monthsResponse is the body of GET /api/months
type monthsResponse struct {
	Months []types.Month `json:"months"`
}

// handleMonths lists the available months
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.reportUC.ListMonths(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if months == nil {
		months = []types.Month{}
	}

	writeJSON(w, r, http.StatusOK, monthsResponse{Months: months})
}
