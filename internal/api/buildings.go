package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/store"
	"github.com/sells-group/facade-energy/internal/validation"
)

func (s *Server) handleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	var b model.Building
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.Building(&b); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.store.CreateBuilding(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.opts.Metrics.ObserveBuildingMutation("create")

	zap.L().Info("building created", zap.String("building_id", created.ID), zap.String("name", created.Name))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BuildingFilter{Name: q.Get("name")}

	var verr validation.Errors
	filter.Limit = queryInt(q, "limit", &verr)
	filter.Offset = queryInt(q, "offset", &verr)
	if len(verr) > 0 {
		writeError(w, r, verr)
		return
	}

	buildings, err := s.store.ListBuildings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if buildings == nil {
		buildings = []model.Building{}
	}
	writeJSON(w, http.StatusOK, buildings)
}

func (s *Server) handleGetBuilding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.store.GetBuilding(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBuilding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	var b model.Building
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.Building(&b); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateBuilding(r.Context(), id, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.opts.Metrics.ObserveBuildingMutation("update")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBuilding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.BuildingID(id); err != nil {
		writeError(w, r, err)
		return
	}

	deleted, err := s.store.DeleteBuilding(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.opts.Metrics.ObserveBuildingMutation("delete")

	zap.L().Info("building deleted", zap.String("building_id", id))
	writeJSON(w, http.StatusOK, deleted)
}

// queryInt parses an optional non-negative integer parameter, recording a
// field error when it is malformed.
func queryInt(q url.Values, key string, verr *validation.Errors) int {
	raw := q.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		*verr = append(*verr, validation.FieldError{Field: key, Msg: key + " must be a non-negative integer"})
		return 0
	}
	return n
}
