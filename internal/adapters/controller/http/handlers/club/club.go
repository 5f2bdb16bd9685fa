package club

import (
	"context"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/cmd/server"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/middlewares"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"github.com/go-chi/chi/v5"
	playground "github.com/go-playground/validator/v10"
)

type clubService interface {
	Create(ctx context.Context, caller dto.Identity, name, description, adminEmail string) (*dto.Club, error)
	Delete(ctx context.Context, caller dto.Identity, clubID string) error
	Update(ctx context.Context, caller dto.Identity, clubID string, update dto.ClubUpdate, newAdminEmail *string) (*dto.Club, error)
	UploadLogo(ctx context.Context, caller dto.Identity, clubID string, data []byte) (*dto.Club, error)
	UploadBanner(ctx context.Context, caller dto.Identity, clubID string, data []byte) (*dto.Club, error)
	Get(ctx context.Context, id string) (*dto.Club, error)
	List(ctx context.Context) ([]dto.Club, error)
	GetByAdmin(ctx context.Context, caller dto.Identity) (*dto.Club, error)
	Count(ctx context.Context) (int64, error)
}

type membershipService interface {
	Join(ctx context.Context, caller dto.Identity, clubID string) (*entity.Membership, error)
	Leave(ctx context.Context, caller dto.Identity, clubID string) error
	IsMember(ctx context.Context, caller dto.Identity, clubID string) (bool, error)
	MyClubs(ctx context.Context, caller dto.Identity) ([]dto.MyClub, error)
	Members(ctx context.Context, caller dto.Identity, clubID string) ([]dto.ClubMember, error)
	CountMembers(ctx context.Context, clubID string) (int64, error)
}

type announcementService interface {
	Post(ctx context.Context, caller dto.Identity, clubID, title, message string) (*entity.Announcement, error)
	Delete(ctx context.Context, caller dto.Identity, clubID, id string) error
	ListByClub(ctx context.Context, clubID string) ([]entity.Announcement, error)
	Feed(ctx context.Context, caller dto.Identity) ([]dto.FeedItem, error)
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type Handler struct {
	logger    *types.Logger
	validate  *playground.Validate
	maxUpload int64

	clubService         clubService
	membershipService   membershipService
	announcementService announcementService
	requestService      requestService

	userCounter  counter
	eventCounter counter
}

func New(s *server.Server) *Handler {
	return &Handler{
		logger:    s.Logger.Named("clubs"),
		validate:  s.Validator,
		maxUpload: int64(s.Settings.Assets.MaxBytes),

		clubService:         s.Clubs,
		membershipService:   s.Memberships,
		announcementService: s.Announcements,
		requestService:      s.ClubRequests,

		userCounter:  s.Users,
		eventCounter: s.Events,
	}
}

// ClubSetup registers club, membership, announcement and club request routes.
// r must be behind Authorized.
func (h Handler) ClubSetup(r chi.Router) {
	r.Route("/clubs", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{clubID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Patch("/", h.update)
			r.Delete("/", h.delete)
			r.Post("/logo", h.uploadLogo)
			r.Post("/banner", h.uploadBanner)

			r.Get("/members", h.members)
			r.Put("/membership", h.join)
			r.Delete("/membership", h.leave)

			r.Get("/announcements", h.announcements)
			r.Post("/announcements", h.postAnnouncement)
			r.Delete("/announcements/{announcementID}", h.deleteAnnouncement)
		})
	})

	r.Route("/club-requests", func(r chi.Router) {
		r.Post("/", h.submitRequest)
		r.Get("/", h.pendingRequests)
		r.Get("/{requestID}", h.getRequest)
		r.Post("/{requestID}/resolve", h.resolveRequest)
	})

	r.Get("/me/club", h.myClub)
	r.Get("/me/clubs", h.myClubs)
	r.Get("/me/feed", h.feed)
	r.Get("/me/club-requests", h.myRequests)
	r.Get("/stats", h.stats)
}

type clubResponse struct {
	dto.Club
	Members  int64 `json:"members"`
	IsMember bool  `json:"is_member"`
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.List(r.Context())
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if clubs == nil {
		clubs = []dto.Club{}
	}
	render.JSON(w, http.StatusOK, clubs)
}

type createClubRequest struct {
	Name        string `json:"name" validate:"club_name"`
	Description string `json:"description" validate:"club_description"`
	AdminEmail  string `json:"admin_email" validate:"required,email"`
}

func (h Handler) create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req createClubRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	club, err := h.clubService.Create(r.Context(), caller, req.Name, req.Description, req.AdminEmail)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, club)
}

func (h Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())
	clubID := chi.URLParam(r, "clubID")

	club, err := h.clubService.Get(r.Context(), clubID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	members, err := h.membershipService.CountMembers(r.Context(), clubID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	isMember, err := h.membershipService.IsMember(r.Context(), caller, clubID)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, clubResponse{Club: *club, Members: members, IsMember: isMember})
}

type updateClubRequest struct {
	Description   *string `json:"description" validate:"omitempty,club_description"`
	NewAdminEmail *string `json:"new_admin_email" validate:"omitempty,email"`
}

func (h Handler) update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req updateClubRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	club, err := h.clubService.Update(r.Context(), caller, chi.URLParam(r, "clubID"),
		dto.ClubUpdate{Description: req.Description}, req.NewAdminEmail)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, club)
}

func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	if err := h.clubService.Delete(r.Context(), caller, chi.URLParam(r, "clubID")); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

func (h Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.clubService.UploadLogo)
}

func (h Handler) uploadBanner(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.clubService.UploadBanner)
}

func (h Handler) upload(
	w http.ResponseWriter,
	r *http.Request,
	store func(ctx context.Context, caller dto.Identity, clubID string, data []byte) (*dto.Club, error),
) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	data, err := render.Upload(w, r, "file", h.maxUpload)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	club, err := store(r.Context(), caller, chi.URLParam(r, "clubID"), data)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, club)
}

func (h Handler) members(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	members, err := h.membershipService.Members(r.Context(), caller, chi.URLParam(r, "clubID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if members == nil {
		members = []dto.ClubMember{}
	}
	render.JSON(w, http.StatusOK, members)
}

func (h Handler) join(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	membership, err := h.membershipService.Join(r.Context(), caller, chi.URLParam(r, "clubID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]interface{}{
		"club_id":   membership.ClubID,
		"joined_at": membership.JoinedAt,
	})
}

func (h Handler) leave(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	if err := h.membershipService.Leave(r.Context(), caller, chi.URLParam(r, "clubID")); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

type announcementResponse struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func newAnnouncementResponse(a entity.Announcement) announcementResponse {
	return announcementResponse{
		ID:        a.ID,
		ClubID:    a.ClubID,
		Title:     a.Title,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func (h Handler) announcements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.announcementService.ListByClub(r.Context(), chi.URLParam(r, "clubID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	resp := make([]announcementResponse, 0, len(announcements))
	for _, a := range announcements {
		resp = append(resp, newAnnouncementResponse(a))
	}
	render.JSON(w, http.StatusOK, resp)
}

type postAnnouncementRequest struct {
	Title   string `json:"title" validate:"announcement_title"`
	Message string `json:"message" validate:"announcement_message"`
}

func (h Handler) postAnnouncement(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req postAnnouncementRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	announcement, err := h.announcementService.Post(r.Context(), caller, chi.URLParam(r, "clubID"), req.Title, req.Message)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, newAnnouncementResponse(*announcement))
}

func (h Handler) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	err := h.announcementService.Delete(r.Context(), caller, chi.URLParam(r, "clubID"), chi.URLParam(r, "announcementID"))
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

func (h Handler) myClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	club, err := h.clubService.GetByAdmin(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, club)
}

func (h Handler) myClubs(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	clubs, err := h.membershipService.MyClubs(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if clubs == nil {
		clubs = []dto.MyClub{}
	}
	render.JSON(w, http.StatusOK, clubs)
}

func (h Handler) feed(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	feed, err := h.announcementService.Feed(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if feed == nil {
		feed = []dto.FeedItem{}
	}
	render.JSON(w, http.StatusOK, feed)
}

type statsResponse struct {
	Users  int64 `json:"users"`
	Clubs  int64 `json:"clubs"`
	Events int64 `json:"events"`
}

func (h Handler) stats(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())
	if !caller.Role.CanManagePlatform() {
		render.Error(w, h.logger, r, errorz.ErrForbidden)
		return
	}

	var (
		resp statsResponse
		err  error
	)
	if resp.Users, err = h.userCounter.Count(r.Context()); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if resp.Clubs, err = h.clubService.Count(r.Context()); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	if resp.Events, err = h.eventCounter.Count(r.Context()); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, resp)
}
