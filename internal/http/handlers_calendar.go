package http

import (
	"net/http"

	applog "calendario/internal/log"
)

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	p, err := pathPeriod(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	ov, err := s.calendar.Month(r.Context(), p)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	s.logger.WithComponent(applog.ComponentCalendar).DebugContext(r.Context(), "Month overview served",
		applog.NewFields().WithPeriod(ov.Year, ov.Month).ToSlice()...)
	writeJSON(w, http.StatusOK, newOverviewResponse(ov))
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	months, err := s.calendar.Year(r.Context(), year)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	out := make([]overviewResponse, 0, len(months))
	for _, ov := range months {
		out = append(out, newOverviewResponse(ov))
	}
	writeJSON(w, http.StatusOK, out)
}
