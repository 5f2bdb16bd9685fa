package event

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/cmd/server"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/middlewares"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/service"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"github.com/go-chi/chi/v5"
	playground "github.com/go-playground/validator/v10"
)

type eventService interface {
	Create(ctx context.Context, caller dto.Identity, clubID string, event entity.Event) (*entity.Event, error)
	Update(ctx context.Context, caller dto.Identity, eventID string, update dto.EventUpdate) (*entity.Event, error)
	UploadPoster(ctx context.Context, caller dto.Identity, eventID string, data []byte) (*entity.Event, error)
	Delete(ctx context.Context, caller dto.Identity, eventID string) error
	Get(ctx context.Context, caller dto.Identity, eventID string) (*dto.Event, error)
	ListByClub(ctx context.Context, caller dto.Identity, clubID string) ([]dto.Event, error)
	Upcoming(ctx context.Context, caller dto.Identity) ([]dto.Event, error)
}

type registrationService interface {
	Register(ctx context.Context, caller dto.Identity, eventID string) (*entity.Registration, error)
	Cancel(ctx context.Context, caller dto.Identity, eventID string) error
	MarkAttendance(ctx context.Context, caller dto.Identity, eventID, studentID string, attended bool) (*entity.Registration, error)
	CheckIn(ctx context.Context, caller dto.Identity, eventID, registrationID string) (*entity.Registration, error)
	Attendees(ctx context.Context, caller dto.Identity, eventID string) ([]dto.EventAttendee, error)
	MyRegistrations(ctx context.Context, caller dto.Identity) ([]dto.StudentRegistration, error)
	Stats(ctx context.Context, caller dto.Identity, eventID string) (*service.EventStats, error)
	ExportAttendees(ctx context.Context, caller dto.Identity, eventID string) (*bytes.Buffer, error)
	Ticket(ctx context.Context, caller dto.Identity, eventID string) ([]byte, error)
	Calendar(ctx context.Context, caller dto.Identity) ([]byte, error)
}

type Handler struct {
	logger    *types.Logger
	validate  *playground.Validate
	maxUpload int64

	eventService        eventService
	registrationService registrationService
}

func New(s *server.Server) *Handler {
	return &Handler{
		logger:    s.Logger.Named("events"),
		validate:  s.Validator,
		maxUpload: int64(s.Settings.Assets.MaxBytes),

		eventService:        s.Events,
		registrationService: s.Registrations,
	}
}

// EventSetup registers event, registration and attendance routes.
// r must be behind Authorized.
func (h Handler) EventSetup(r chi.Router) {
	r.Get("/events", h.upcoming)
	r.Get("/clubs/{clubID}/events", h.listByClub)
	r.Post("/clubs/{clubID}/events", h.create)

	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
		r.Post("/poster", h.uploadPoster)

		r.Put("/registration", h.register)
		r.Delete("/registration", h.cancel)
		r.Get("/ticket", h.ticket)

		r.Get("/attendees", h.attendees)
		r.Get("/attendees.xlsx", h.exportAttendees)
		r.Put("/attendees/{studentID}/attendance", h.markAttendance)
		r.Post("/check-in", h.checkIn)
		r.Get("/stats", h.stats)
	})

	r.Get("/me/registrations", h.myRegistrations)
	r.Get("/me/calendar.ics", h.calendar)
}

type eventResponse struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"club_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	SeatsLeft   int       `json:"seats_left"`
	PosterURL   string    `json:"poster_url,omitempty"`
}

func newEventResponse(event *entity.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		ClubID:      event.ClubID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		Location:    event.Location,
		Capacity:    event.Capacity,
		SeatsLeft:   event.SeatsLeft(),
		PosterURL:   event.PosterURL,
	}
}

type registrationResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	StudentID string    `json:"student_id"`
	Attended  bool      `json:"attended"`
	CreatedAt time.Time `json:"created_at"`
}

func newRegistrationResponse(registration *entity.Registration) registrationResponse {
	return registrationResponse{
		ID:        registration.ID,
		EventID:   registration.EventID,
		StudentID: registration.StudentID,
		Attended:  registration.Attended,
		CreatedAt: registration.CreatedAt,
	}
}

func (h Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	events, err := h.eventService.Upcoming(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if events == nil {
		events = []dto.Event{}
	}
	render.JSON(w, http.StatusOK, events)
}

func (h Handler) listByClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	events, err := h.eventService.ListByClub(r.Context(), caller, chi.URLParam(r, "clubID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if events == nil {
		events = []dto.Event{}
	}
	render.JSON(w, http.StatusOK, events)
}

type createEventRequest struct {
	Title       string    `json:"title" validate:"event_title"`
	Description string    `json:"description" validate:"omitempty,event_description"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"event_location"`
	Capacity    int       `json:"capacity" validate:"gt=0"`
}

func (h Handler) create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req createEventRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	event, err := h.eventService.Create(r.Context(), caller, chi.URLParam(r, "clubID"), entity.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, newEventResponse(event))
}

func (h Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	event, err := h.eventService.Get(r.Context(), caller, chi.URLParam(r, "eventID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, event)
}

type updateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,event_title"`
	Description *string    `json:"description" validate:"omitempty,event_description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location" validate:"omitempty,event_location"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gt=0"`
}

func (h Handler) update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req updateEventRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	event, err := h.eventService.Update(r.Context(), caller, chi.URLParam(r, "eventID"), dto.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newEventResponse(event))
}

func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	if err := h.eventService.Delete(r.Context(), caller, chi.URLParam(r, "eventID")); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

func (h Handler) uploadPoster(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	data, err := render.Upload(w, r, "file", h.maxUpload)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	event, err := h.eventService.UploadPoster(r.Context(), caller, chi.URLParam(r, "eventID"), data)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newEventResponse(event))
}

func (h Handler) register(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	registration, err := h.registrationService.Register(r.Context(), caller, chi.URLParam(r, "eventID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, newRegistrationResponse(registration))
}

func (h Handler) cancel(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	if err := h.registrationService.Cancel(r.Context(), caller, chi.URLParam(r, "eventID")); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

func (h Handler) ticket(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())
	eventID := chi.URLParam(r, "eventID")

	png, err := h.registrationService.Ticket(r.Context(), caller, eventID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.File(w, "image/png", "ticket-"+eventID+".png", png)
}

func (h Handler) attendees(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	attendees, err := h.registrationService.Attendees(r.Context(), caller, chi.URLParam(r, "eventID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if attendees == nil {
		attendees = []dto.EventAttendee{}
	}
	render.JSON(w, http.StatusOK, attendees)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h Handler) exportAttendees(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())
	eventID := chi.URLParam(r, "eventID")

	buf, err := h.registrationService.ExportAttendees(r.Context(), caller, eventID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.File(w, xlsxContentType, "attendees-"+eventID+".xlsx", buf.Bytes())
}

type attendanceRequest struct {
	Attended *bool `json:"attended" validate:"required"`
}

func (h Handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req attendanceRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	registration, err := h.registrationService.MarkAttendance(r.Context(), caller,
		chi.URLParam(r, "eventID"), chi.URLParam(r, "studentID"), *req.Attended)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newRegistrationResponse(registration))
}

type checkInRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,uuid"`
}

func (h Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req checkInRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	registration, err := h.registrationService.CheckIn(r.Context(), caller, chi.URLParam(r, "eventID"), req.RegistrationID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newRegistrationResponse(registration))
}

func (h Handler) stats(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	stats, err := h.registrationService.Stats(r.Context(), caller, chi.URLParam(r, "eventID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, stats)
}

func (h Handler) myRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	registrations, err := h.registrationService.MyRegistrations(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if registrations == nil {
		registrations = []dto.StudentRegistration{}
	}
	render.JSON(w, http.StatusOK, registrations)
}

func (h Handler) calendar(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	ics, err := h.registrationService.Calendar(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.File(w, "text/calendar; charset=utf-8", "events.ics", ics)
}
