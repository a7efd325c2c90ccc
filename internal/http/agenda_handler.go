package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/gotree-agenda/internal/application"
	"github.com/example/gotree-agenda/internal/schedule"
)

type agendaService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (schedule.Entry, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (schedule.Entry, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
	RescheduleVisit(ctx context.Context, params application.RescheduleParams) error
	ListEventsForUser(ctx context.Context, principal application.Principal) ([]schedule.Entry, error)
	ListEventsForAdmin(ctx context.Context, principal application.Principal, userIDFilter string) ([]schedule.Entry, error)
	GlobalEvents(ctx context.Context, start, end time.Time) ([]schedule.Entry, error)
	GetReportData(ctx context.Context, start, end time.Time) ([]schedule.Entry, error)
	MonthAvailability(ctx context.Context, principal application.Principal, year int, month time.Month) ([]schedule.DayAvailability, error)
	CheckGlobalConflicts(ctx context.Context, date time.Time, shift schedule.Shift, principal application.Principal) (string, error)
	FindEventsByCompanies(ctx context.Context, companyIDs []string) ([]schedule.Entry, error)
	FindEventsByClientEmail(ctx context.Context, email string) ([]schedule.Entry, error)
}

// AgendaHandler exposes the unified agenda API.
type AgendaHandler struct {
	service   agendaService
	responder responder
	logger    *slog.Logger
}

func NewAgendaHandler(service agendaService, logger *slog.Logger) *AgendaHandler {
	base := defaultLogger(logger)
	return &AgendaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AgendaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AgendaHandler", operation, attrs...)
}

func (h *AgendaHandler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return application.Principal{}, false
	}
	return principal, true
}

// List handles GET /api/agenda/eventos.
func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEventsForUser(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list agenda", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
}

// ListAll handles GET /api/agenda/eventos/all. Admin only; accepts an
// optional userId filter.
func (h *AgendaHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	filter := strings.TrimSpace(r.URL.Query().Get("userId"))
	entries, err := h.service.ListEventsForAdmin(r.Context(), principal, filter)
	if err != nil {
		h.log(r.Context(), "ListAll").ErrorContext(r.Context(), "failed to list admin agenda", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
}

// Create handles POST /api/agenda/eventos.
func (h *AgendaHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	entry, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, entryToDTO(entry))
}

// Update handles PUT /api/agenda/eventos/{id}.
func (h *AgendaHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	entry, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entryToDTO(entry))
}

// Delete handles DELETE /api/agenda/eventos/{id}.
func (h *AgendaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Reschedule handles PUT /api/agenda/visitas/{id}/reagendar.
func (h *AgendaHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	visitID, ok := VisitIDFromContext(r.Context())
	if !ok || strings.TrimSpace(visitID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVisitID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	newDate, err := parseDateField(req.NewDate)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"new_date": "data inválida, use o formato AAAA-MM-DD"},
		})
		return
	}

	if err := h.service.RescheduleVisit(r.Context(), application.RescheduleParams{
		Principal: principal,
		VisitID:   visitID,
		NewDate:   newDate,
		Reason:    req.Reason,
	}); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Global handles GET /api/agenda/global?start=&end=.
func (h *AgendaHandler) Global(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	start, end, vErr := parsePeriod(r)
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	entries, err := h.service.GlobalEvents(r.Context(), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
}

// Report handles GET /api/agenda/relatorio?start=&end=.
func (h *AgendaHandler) Report(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	start, end, vErr := parsePeriod(r)
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	entries, err := h.service.GetReportData(r.Context(), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
}

// Availability handles GET /api/agenda/disponibilidade?year=&month=.
func (h *AgendaHandler) Availability(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	year, errYear := strconv.Atoi(query.Get("year"))
	monthNum, errMonth := strconv.Atoi(query.Get("month"))
	if errYear != nil || errMonth != nil || monthNum < 1 || monthNum > 12 {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"period": "informe ano e mês válidos"},
		})
		return
	}

	days, err := h.service.MonthAvailability(r.Context(), principal, year, time.Month(monthNum))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]dayAvailabilityDTO, 0, len(days))
	for _, day := range days {
		payload = append(payload, dayAvailabilityDTO{
			Date:          day.Date.Format(time.DateOnly),
			MorningBusy:   day.MorningBusy,
			AfternoonBusy: day.AfternoonBusy,
			FullDayBusy:   day.FullDayBusy,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// Conflicts handles GET /api/agenda/conflitos?date=&shift=.
func (h *AgendaHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	date, err := parseDateField(query.Get("date"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"date": "data inválida, use o formato AAAA-MM-DD"},
		})
		return
	}
	shift, err := schedule.ParseShift(query.Get("shift"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"shift": "turno inválido"},
		})
		return
	}

	warning, err := h.service.CheckGlobalConflicts(r.Context(), date, shift, principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictResponse{Warning: warning})
}

// ByCompanies handles GET /api/agenda/empresas?ids=a,b,c. An email query
// parameter may be used instead to resolve the companies of a client portal
// login.
func (h *AgendaHandler) ByCompanies(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	query := r.URL.Query()
	if email := strings.TrimSpace(query.Get("email")); email != "" {
		entries, err := h.service.FindEventsByClientEmail(r.Context(), email)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
		return
	}

	var ids []string
	for _, raw := range strings.Split(query.Get("ids"), ",") {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"ids": "informe ao menos uma empresa"},
		})
		return
	}

	entries, err := h.service.FindEventsByCompanies(r.Context(), ids)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entriesToDTO(entries))
}

// ------------------------------- DTOs ------------------------------------

type eventRequest struct {
	Title             string `json:"titulo"`
	Description       string `json:"descricao"`
	EventDate         string `json:"data"`
	Shift             string `json:"turno"`
	EventType         string `json:"tipo_evento"`
	CompanyID         string `json:"empresa_id"`
	ClientName        string `json:"nome_cliente"`
	ManualObservation string `json:"observacao"`
}

func (req eventRequest) toInput() (application.EventInput, *application.ValidationError) {
	fieldErrors := make(map[string]string)

	date, err := parseDateField(req.EventDate)
	if err != nil {
		fieldErrors["data"] = "data inválida, use o formato AAAA-MM-DD"
	}
	shift, err := schedule.ParseShift(req.Shift)
	if err != nil {
		fieldErrors["turno"] = "turno inválido"
	}
	eventType, err := schedule.ParseEventType(req.EventType)
	if err != nil {
		fieldErrors["tipo_evento"] = "tipo de evento inválido"
	}

	if len(fieldErrors) > 0 {
		return application.EventInput{}, &application.ValidationError{FieldErrors: fieldErrors}
	}

	return application.EventInput{
		Title:             req.Title,
		Description:       req.Description,
		EventDate:         date,
		Shift:             shift,
		EventType:         eventType,
		CompanyID:         strings.TrimSpace(req.CompanyID),
		ClientName:        strings.TrimSpace(req.ClientName),
		ManualObservation: strings.TrimSpace(req.ManualObservation),
	}, nil
}

type rescheduleRequest struct {
	NewDate string `json:"new_date"`
	Reason  string `json:"reason"`
}

type conflictResponse struct {
	Warning string `json:"warning,omitempty"`
}

type dayAvailabilityDTO struct {
	Date          string `json:"data"`
	MorningBusy   bool   `json:"manha_ocupada"`
	AfternoonBusy bool   `json:"tarde_ocupada"`
	FullDayBusy   bool   `json:"dia_cheio"`
}

type entryDTO struct {
	ID                string `json:"id"`
	Kind              string `json:"kind"`
	SourceVisitID     string `json:"visita_id,omitempty"`
	Title             string `json:"titulo"`
	Date              string `json:"data"`
	Type              string `json:"tipo_evento"`
	Description       string `json:"descricao,omitempty"`
	Shift             string `json:"turno"`
	Status            string `json:"status"`
	StatusDescricao   string `json:"status_descricao"`
	ClientName        string `json:"nome_cliente,omitempty"`
	UnitName          string `json:"nome_unidade,omitempty"`
	SectorName        string `json:"nome_setor,omitempty"`
	ResponsibleName   string `json:"nome_responsavel,omitempty"`
	OriginalVisitDate string `json:"data_visita_original,omitempty"`
}

func entryToDTO(entry schedule.Entry) entryDTO {
	dto := entryDTO{
		ID:              entry.ReferenceID,
		Kind:            string(entry.Kind),
		SourceVisitID:   entry.SourceVisitID,
		Title:           entry.Title,
		Date:            entry.Date.Format(time.DateOnly),
		Type:            string(entry.Type),
		Description:     entry.Description,
		Shift:           string(entry.Shift),
		Status:          string(entry.Status),
		StatusDescricao: entry.StatusDescricao,
		ClientName:      entry.ClientName,
		UnitName:        entry.UnitName,
		SectorName:      entry.SectorName,
		ResponsibleName: entry.ResponsibleName,
	}
	if entry.OriginalVisitDate != nil {
		dto.OriginalVisitDate = entry.OriginalVisitDate.Format(time.DateOnly)
	}
	return dto
}

func entriesToDTO(entries []schedule.Entry) []entryDTO {
	payload := make([]entryDTO, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, entryToDTO(entry))
	}
	return payload
}

func parseDateField(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(value))
}

func parsePeriod(r *http.Request) (time.Time, time.Time, *application.ValidationError) {
	query := r.URL.Query()
	fieldErrors := make(map[string]string)

	start, err := parseDateField(query.Get("start"))
	if err != nil {
		fieldErrors["start"] = "data inválida, use o formato AAAA-MM-DD"
	}
	end, err := parseDateField(query.Get("end"))
	if err != nil {
		fieldErrors["end"] = "data inválida, use o formato AAAA-MM-DD"
	}

	if len(fieldErrors) > 0 {
		return time.Time{}, time.Time{}, &application.ValidationError{FieldErrors: fieldErrors}
	}
	return start, end, nil
}
