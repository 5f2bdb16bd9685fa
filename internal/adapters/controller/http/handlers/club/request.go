package club

import (
	"context"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/middlewares"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/go-chi/chi/v5"
)

type requestService interface {
	Submit(ctx context.Context, caller dto.Identity, name, description string) (*entity.ClubRequest, error)
	ListPending(ctx context.Context, caller dto.Identity) ([]entity.ClubRequest, error)
	MyRequests(ctx context.Context, caller dto.Identity) ([]entity.ClubRequest, error)
	Get(ctx context.Context, caller dto.Identity, id string) (*entity.ClubRequest, error)
	Resolve(ctx context.Context, caller dto.Identity, id string, decision entity.ClubRequestStatus) (*entity.ClubRequest, *entity.Club, error)
}

type requestResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	StudentID   string                   `json:"student_id"`
	Status      entity.ClubRequestStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	ClubID      string                   `json:"club_id,omitempty"`
}

func newRequestResponse(request entity.ClubRequest) requestResponse {
	return requestResponse{
		ID:          request.ID,
		Name:        request.Name,
		Description: request.Description,
		StudentID:   request.StudentID,
		Status:      request.Status,
		CreatedAt:   request.CreatedAt,
	}
}

func newRequestsResponse(requests []entity.ClubRequest) []requestResponse {
	resp := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		resp = append(resp, newRequestResponse(request))
	}
	return resp
}

type submitRequestRequest struct {
	Name        string `json:"name" validate:"club_name"`
	Description string `json:"description" validate:"club_description"`
}

func (h Handler) submitRequest(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req submitRequestRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	request, err := h.requestService.Submit(r.Context(), caller, req.Name, req.Description)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, newRequestResponse(*request))
}

func (h Handler) pendingRequests(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	requests, err := h.requestService.ListPending(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newRequestsResponse(requests))
}

func (h Handler) myRequests(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	requests, err := h.requestService.MyRequests(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newRequestsResponse(requests))
}

func (h Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	request, err := h.requestService.Get(r.Context(), caller, chi.URLParam(r, "requestID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newRequestResponse(*request))
}

type resolveRequestRequest struct {
	Decision entity.ClubRequestStatus `json:"decision" validate:"oneof=APPROVED REJECTED"`
}

func (h Handler) resolveRequest(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req resolveRequestRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	request, club, err := h.requestService.Resolve(r.Context(), caller, chi.URLParam(r, "requestID"), req.Decision)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	resp := newRequestResponse(*request)
	if club != nil {
		resp.ClubID = club.ID
	}
	render.JSON(w, http.StatusOK, resp)
}
