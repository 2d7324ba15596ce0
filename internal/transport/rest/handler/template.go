package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/benjaminschreck/go-clause/internal/service"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// DefaultMaxUploadBytes limits .docx uploads.
const DefaultMaxUploadBytes = 20 << 20

// Observer receives domain events for metrics.
type Observer interface {
	ObserveRender(fields int)
	ObserveImport(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRender(int)  {}
func (nopObserver) ObserveImport(error) {}

// TemplateHandler handles template endpoints
type TemplateHandler struct {
	templates      *service.TemplateService
	observer       Observer
	logger         *clause.Logger
	maxUploadBytes int64
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates *service.TemplateService, observer Observer, logger *clause.Logger, maxUploadBytes int64) *TemplateHandler {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = clause.NopLogger()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &TemplateHandler{
		templates:      templates,
		observer:       observer,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateTemplateRequest is the request body for creating a template.
// Questionnaire may be a JSON object or a string holding serialized JSON.
type CreateTemplateRequest struct {
	Title         string          `json:"title"`
	ContractHTML  string          `json:"contractHtml"`
	Questionnaire json.RawMessage `json:"questionnaire"`
}

// UpdateHTMLRequest is the request body for replacing a template's HTML
type UpdateHTMLRequest struct {
	ContractHTML string `json:"contractHtml"`
}

// RenderRequest is the request body for render and export
type RenderRequest struct {
	Answers map[string]string `json:"answers"`
	Fields  map[string]string `json:"fields"`
	HTML    string            `json:"html"`
}

// ExportRequest is the request body for export
type ExportRequest struct {
	RenderRequest
	Target string `json:"target"`
}

// DetectRequest is the request body for marker detection
type DetectRequest struct {
	HTML string `json:"html"`
}

func (r RenderRequest) input() service.RenderInput {
	return service.RenderInput{Answers: r.Answers, Fields: r.Fields, HTML: r.HTML}
}

func rawQuestionnaire(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return trimmed, nil
}

// Create handles POST /v1/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	questionnaire, err := rawQuestionnaire(req.Questionnaire)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid questionnaire")
		return
	}

	v, err := h.templates.Create(r.Context(), service.CreateInput{
		Title:         req.Title,
		ContractHTML:  req.ContractHTML,
		Questionnaire: questionnaire,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get handles GET /v1/templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.templates.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateHTML handles PUT /v1/templates/{id}/html
func (h *TemplateHandler) UpdateHTML(w http.ResponseWriter, r *http.Request) {
	var req UpdateHTMLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, added, err := h.templates.UpdateHTML(r.Context(), mux.Vars(r)["id"], req.ContractHTML)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"template": v, "addedConditionals": added})
}

// UpdateQuestionnaire handles PUT /v1/templates/{id}/questionnaire.
// The body is the questionnaire JSON itself.
func (h *TemplateHandler) UpdateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := clause.ParseQuestionnaire(string(body))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	v, issues, err := h.templates.UpdateQuestionnaire(r.Context(), mux.Vars(r)["id"], q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"template": v, "issues": issueList(issues)})
}

// Import handles POST /v1/templates/{id}/import. The .docx is sent either as
// the multipart field "file" or as the raw request body.
func (h *TemplateHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	data, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, added, err := h.templates.Import(r.Context(), mux.Vars(r)["id"], data)
	h.observer.ObserveImport(err)
	if err != nil {
		h.logger.WithField("error", err).Warn("Import failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"template": v, "addedConditionals": added})
}

func (h *TemplateHandler) readUpload(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// Render handles POST /v1/templates/{id}/render
func (h *TemplateHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.templates.Render(r.Context(), mux.Vars(r)["id"], req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.observer.ObserveRender(len(res.Fields))
	writeJSON(w, http.StatusOK, res)
}

// Export handles POST /v1/templates/{id}/export
func (h *TemplateHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target == "" {
		req.Target = r.URL.Query().Get("target")
	}
	target, err := clause.ParseExportTarget(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.templates.Export(r.Context(), mux.Vars(r)["id"], target, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out.Body)
}

// Validate handles GET /v1/templates/{id}/validate
func (h *TemplateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	issues, err := h.templates.Validate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"issues": issueList(issues)})
}

// Detect handles POST /v1/detect
func (h *TemplateHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.templates.Detect(req.HTML))
}

// decodeOptional decodes a JSON body, treating an empty body as the zero value.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type issueJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func issueList(issues []clause.ValidationIssue) []issueJSON {
	out := make([]issueJSON, len(issues))
	for i, issue := range issues {
		out[i] = issueJSON{Field: issue.Field, Message: issue.Message}
	}
	return out
}
