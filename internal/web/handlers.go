package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Bernah2o/legalmatrix/internal/core"
	"github.com/Bernah2o/legalmatrix/internal/logging"
)

// readUploadedFile extracts the uploaded file from a multipart request,
// enforcing the configured size limit.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		return nil, "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.PreviewImport(r.Context(), data, filename)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	overwrite, _ := strconv.ParseBool(r.FormValue("overwrite"))
	var createdBy *string
	if u := r.FormValue("usuario"); u != "" {
		createdBy = &u
	}

	logging.FromContext(r.Context()).Info("import requested",
		"filename", filename, "overwrite", overwrite, "size", len(data))

	res, err := s.service.CommitImport(r.Context(), data, filename, createdBy, overwrite)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListImportRuns(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r, "page", 1)
	size := parseIntParam(r, "pageSize", 50)

	runs, err := s.service.ListImportRuns(r.Context(), page, size)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetImportRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.GetImportRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRegulations(w http.ResponseWriter, r *http.Request) {
	filter := core.RegulationFilter{
		Clasificacion: r.URL.Query().Get("clasificacion"),
		Tema:          r.URL.Query().Get("tema"),
		Query:         r.URL.Query().Get("q"),
		Page:          parseIntParam(r, "page", 1),
		PageSize:      parseIntParam(r, "pageSize", 50),
	}
	if v := r.URL.Query().Get("anio"); v != "" {
		if anio, err := strconv.Atoi(v); err == nil {
			filter.Anio = &anio
		}
	}
	if v := r.URL.Query().Get("sectorId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 32); err == nil {
			sectorID := int32(id)
			filter.SectorID = &sectorID
		}
	}

	page, err := s.service.ListRegulations(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleRegulationVersions(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64URLParam(r, "id")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	versions, err := s.service.RegulationVersions(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, versions)
}

func (s *Server) handleListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.service.ListSectors(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, sectors)
}

func (s *Server) handleSyncOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseInt64URLParam(r, "orgID")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	res, err := s.service.SyncOrganization(r.Context(), orgID)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleApplicableRegulations(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseInt64URLParam(r, "orgID")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	regs, err := s.service.ApplicableRegulations(r.Context(), orgID)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, regs)
}

func (s *Server) handleListCompliance(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseInt64URLParam(r, "orgID")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	filter := core.ComplianceFilter{
		OrganizationID: orgID,
		Status:         r.URL.Query().Get("status"),
		Applicability:  r.URL.Query().Get("applicability"),
		Page:           parseIntParam(r, "page", 1),
		PageSize:       parseIntParam(r, "pageSize", 50),
	}
	page, err := s.service.ListCompliance(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleOrganizationStats(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseInt64URLParam(r, "orgID")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	stats, err := s.service.GetOrganizationStats(r.Context(), orgID)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// updateComplianceRequest is the JSON body of a compliance evaluation.
type updateComplianceRequest struct {
	Status          string  `json:"status"`
	Evidencia       *string `json:"evidencia"`
	PlanAccion      *string `json:"planAccion"`
	Responsable     *string `json:"responsable"`
	FechaCompromiso *string `json:"fechaCompromiso"`
	ChangedBy       *string `json:"changedBy"`
}

func (s *Server) handleUpdateCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64URLParam(r, "id")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var req updateComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	in := core.UpdateComplianceInput{
		Status:      core.ComplianceStatus(req.Status),
		Evidencia:   req.Evidencia,
		PlanAccion:  req.PlanAccion,
		Responsable: req.Responsable,
		ChangedBy:   req.ChangedBy,
	}
	if req.FechaCompromiso != nil {
		t, err := time.Parse("2006-01-02", *req.FechaCompromiso)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		in.FechaCompromiso = &t
	}

	res, err := s.service.UpdateCompliance(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleComplianceVersions(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64URLParam(r, "id")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	versions, err := s.service.ComplianceVersions(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, versions)
}

// errorStatus maps known failure classes to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case core.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseInt64URLParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
