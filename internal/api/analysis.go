package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/report"
	"github.com/sells-group/facade-energy/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) city(raw string) (string, error) {
	return validation.City(s.analyzer.Tables().Cities(), raw)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		City string `json:"city"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	city, err := s.city(req.City)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), id, city)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.opts.RecordHistory {
		if _, err := s.store.RecordAnalysis(r.Context(), id, city, res.Totals); err != nil {
			zap.L().Warn("failed to record analysis",
				zap.String("building_id", id),
				zap.String("city", city),
				zap.Error(err),
			)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	id1, id2 := chi.URLParam(r, "id1"), chi.URLParam(r, "id2")

	var verr validation.Errors
	for _, id := range []string{id1, id2} {
		if err := validation.BuildingID(id); err != nil {
			verr = append(verr, err.(validation.Errors)...)
		}
	}
	if len(verr) == 0 && id1 == id2 {
		verr = append(verr, validation.FieldError{Field: "id2", Msg: "Cannot compare a building with itself"})
	}
	city, err := s.city(chi.URLParam(r, "city"))
	if err != nil {
		verr = append(verr, err.(validation.Errors)...)
	}
	if len(verr) > 0 {
		writeError(w, r, verr)
		return
	}

	cmp, err := s.analyzer.Compare(r.Context(), id1, id2, city)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if wantsXLSX(r) {
		b1, err := s.store.GetBuilding(r.Context(), id1)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b2, err := s.store.GetBuilding(r.Context(), id2)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := report.ComparisonWorkbook(b1, b2, city, cmp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeWorkbook(w, r, f, "comparison.xlsx")
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	rankings, err := s.analyzer.Rank(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if wantsXLSX(r) {
		b, err := s.store.GetBuilding(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := report.RankingWorkbook(b, rankings)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeWorkbook(w, r, f, "ranking.xlsx")
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, validation.Errors{{Field: "limit", Msg: "limit must be a positive integer"}})
			return
		}
		limit = n
	}

	if _, err := s.store.GetBuilding(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	records, err := s.store.ListAnalyses(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []model.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}
