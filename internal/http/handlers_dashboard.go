package http

import (
	"net/http"
)

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	items, err := s.gateway.RecentActivity(r.Context(), sessionFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(items).Write(w)
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	ov, err := s.gateway.MonthOverview(r.Context(), sessionFrom(r.Context()), params.Year, params.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(ov).Write(w)
}
