package server

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/jonathan/cv-importer/internal/server/middleware"
)

// maxListLimit caps the page size of GET /imports
const maxListLimit = 200

var requestValidator = validator.New()

// ParseRequest is the body of POST /linkedin/parse
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// CreateImportRequest is the body of POST /imports
type CreateImportRequest struct {
	Text   string `json:"text" validate:"required"`
	Source string `json:"source,omitempty" validate:"omitempty,max=200"`
}

// ApplyResponse reports the rows written by POST /imports/{id}/apply
type ApplyResponse struct {
	ImportID string         `json:"import_id"`
	Counts   map[string]int `json:"counts"`
}

// handleParse parses pasted profile text without storing it.
// The body is the ParseResult; cache and truncation state travel in headers.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeValid(w, r, &req) {
		return
	}

	preview, err := s.importer.Preview(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("X-Content-Hash", preview.Hash)
	if preview.Cached {
		w.Header().Set("X-Parse-Cache", "hit")
	} else {
		w.Header().Set("X-Parse-Cache", "miss")
	}
	if preview.Truncated {
		w.Header().Set("X-Input-Truncated", "true")
	}
	writeJSON(w, http.StatusOK, preview.Result)
}

func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateImportRequest
	if !decodeValid(w, r, &req) {
		return
	}

	imp, err := s.importer.Create(r.Context(), userID, req.Text, req.Source)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.Header().Set("Location", "/imports/"+imp.ID.String())
	writeJSON(w, http.StatusCreated, imp)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	imports, err := s.importer.List(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": imports, "count": len(imports)})
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	userID, importID, ok := userAndImport(w, r)
	if !ok {
		return
	}

	imp, err := s.importer.Get(r.Context(), userID, importID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

func (s *Server) handleDeleteImport(w http.ResponseWriter, r *http.Request) {
	userID, importID, ok := userAndImport(w, r)
	if !ok {
		return
	}

	if err := s.importer.Delete(r.Context(), userID, importID); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyImport merges the selected parts of an import into the user's CV.
// The body selects parts, e.g. {"experience": true, "skills": true}.
func (s *Server) handleApplyImport(w http.ResponseWriter, r *http.Request) {
	userID, importID, ok := userAndImport(w, r)
	if !ok {
		return
	}
	var sel importer.Selection
	if !decodeJSON(w, r, &sel) {
		return
	}

	res, err := s.importer.Apply(r.Context(), userID, importID, sel)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ApplyResponse{ImportID: importID.String(), Counts: res.Counts()})
}

func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cv, err := s.importer.CV(r.Context(), userID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cv)
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func userAndImport(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	importID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid import id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, importID, true
}

func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if err := requestValidator.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}
