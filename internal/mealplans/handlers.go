package mealplans

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
)

const maxImportBytes = 1 << 20

// Handler handles HTTP requests for meal plans and templates.
type Handler struct {
	service   *Service
	templates *TemplateEngine
}

// NewHandler creates a new meal plans handler.
func NewHandler(service *Service, templates *TemplateEngine) *Handler {
	return &Handler{service: service, templates: templates}
}

// HandleList handles GET /v1/plans
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list meal plans")
		return
	}

	now := h.service.now()
	resp := ListPlansResponse{Plans: make([]MealPlanDTO, 0, len(plans))}
	for i := range plans {
		resp.Plans = append(resp.Plans, toDTO(&plans[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /v1/plans
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	plan, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create meal plan")
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(plan, h.service.now()))
}

// HandleGet handles GET /v1/plans/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to get meal plan")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(plan, h.service.now()))
}

// HandleUpdate handles PATCH /v1/plans/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	plan, err := h.service.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update meal plan")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(plan, h.service.now()))
}

// HandleDelete handles DELETE /v1/plans/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "Failed to delete meal plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssign handles PUT /v1/plans/{id}/assignments
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	plan, err := h.service.Assign(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update assignment")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(plan, h.service.now()))
}

// HandleWeek handles GET /v1/plans/{id}/weeks/{week}
func (h *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeOutOfRange, "week must be an integer 0-3")
		return
	}

	view, err := h.service.WeekView(r.Context(), r.PathValue("id"), week)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build week view")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleValidation handles GET /v1/plans/{id}/validation
func (h *Handler) HandleValidation(w http.ResponseWriter, r *http.Request) {
	errs, err := h.service.Validation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to validate meal plan")
		return
	}
	writeJSON(w, http.StatusOK, ValidationResponse{Valid: len(errs) == 0, Errors: errs})
}

// HandlePDF handles GET /v1/plans/{id}/pdf
func (h *Handler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := h.service.Printable(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to render meal plan")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="meal-plan-`+id+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// HandleSaveTemplate handles POST /v1/plans/{id}/template
func (h *Handler) HandleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	tmpl, err := h.templates.SaveAsTemplate(r.Context(), r.PathValue("id"), req.TemplateName, req.Description)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save template")
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(tmpl, h.service.now()))
}

// HandleListTemplates handles GET /v1/templates
func (h *Handler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list templates")
		return
	}

	now := h.service.now()
	resp := ListTemplatesResponse{Templates: make([]MealPlanDTO, 0, len(templates))}
	for i := range templates {
		resp.Templates = append(resp.Templates, toDTO(&templates[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleNameAvailable handles GET /v1/templates/name-available?name=
func (h *Handler) HandleNameAvailable(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	available, err := h.templates.IsTemplateNameAvailable(r.Context(), name, familyFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Failed to check template name")
		return
	}
	writeJSON(w, http.StatusOK, NameAvailableResponse{Name: strings.TrimSpace(name), Available: available})
}

// HandleApply handles POST /v1/templates/{id}/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	start, err := calendar.ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidStartDate, "start_date must be YYYY-MM-DD")
		return
	}

	plan, err := h.templates.ApplyTemplate(r.Context(), r.PathValue("id"), start)
	if err != nil {
		writeServiceError(w, r, err, "Failed to apply template")
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(plan, h.service.now()))
}

// HandleStats handles GET /v1/templates/{id}/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to get template")
		return
	}

	stats, err := h.templates.TemplateStats(tmpl)
	if err != nil {
		writeServiceError(w, r, err, "Failed to compute template stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleExport handles GET /v1/templates/{id}/export?format=json|yaml
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to get template")
		return
	}

	doc, err := ExportTemplate(tmpl)
	if err != nil {
		writeServiceError(w, r, err, "Failed to export template")
		return
	}
	body, contentType, err := doc.Encode(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to export template")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// HandleImport handles POST /v1/templates/import?format=json|yaml
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Template document is too large")
		return
	}

	doc, err := DecodeTemplateDocument(body, r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to read template document")
		return
	}

	tmpl, err := h.templates.ImportTemplate(r.Context(), doc)
	if err != nil {
		writeServiceError(w, r, err, "Failed to import template")
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(tmpl, h.service.now()))
}

// writeServiceError answers coded errors with their own status and code and
// hides anything else behind internal_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		writeError(w, apperr.HTTPStatus(typed.Code), typed.Code, typed.Message)
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
	writeError(w, http.StatusInternalServerError, "internal_error", fallback)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
