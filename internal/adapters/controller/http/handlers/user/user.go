package user

import (
	"context"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/cmd/server"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/middlewares"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"github.com/go-chi/chi/v5"
	playground "github.com/go-playground/validator/v10"
)

type userService interface {
	SignUp(ctx context.Context, name, email, password string) (*entity.User, error)
	Verify(ctx context.Context, email, code string) (*entity.User, error)
	ResendCode(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, time.Time, *entity.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	Me(ctx context.Context, caller dto.Identity) (*entity.User, error)
	UpdateName(ctx context.Context, caller dto.Identity, name string) (*entity.User, error)
	UploadAvatar(ctx context.Context, caller dto.Identity, data []byte) (*entity.User, error)
	List(ctx context.Context, caller dto.Identity) ([]entity.User, error)
}

type Handler struct {
	logger      *types.Logger
	validate    *playground.Validate
	maxUpload   int64
	userService userService
}

func New(s *server.Server) *Handler {
	return &Handler{
		logger:      s.Logger.Named("users"),
		validate:    s.Validator,
		maxUpload:   int64(s.Settings.Assets.MaxBytes),
		userService: s.Users,
	}
}

type userResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
	AvatarURL  string      `json:"avatar_url,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func newUserResponse(user *entity.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		AvatarURL:  user.AvatarURL,
		CreatedAt:  user.CreatedAt,
	}
}

// AuthSetup registers the public account routes.
func (h Handler) AuthSetup(r chi.Router) {
	r.Post("/sign-up", h.signUp)
	r.Post("/verify", h.verify)
	r.Post("/resend-code", h.resendCode)
	r.Post("/login", h.login)
	r.Post("/password-reset", h.requestPasswordReset)
	r.Post("/password-reset/confirm", h.resetPassword)
}

// UserSetup registers the routes of the signed-in user. r must be behind Authorized.
func (h Handler) UserSetup(r chi.Router) {
	r.Get("/me", h.me)
	r.Patch("/me", h.updateMe)
	r.Post("/me/avatar", h.uploadAvatar)
	r.Get("/users", h.list)
}

type signUpRequest struct {
	Name     string `json:"name" validate:"person_name"`
	Email    string `json:"email" validate:"campus_email"`
	Password string `json:"password" validate:"password"`
}

func (h Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	user, err := h.userService.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, newUserResponse(user))
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,max=32"`
}

func (h Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	user, err := h.userService.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newUserResponse(user))
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h Handler) resendCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	if err := h.userService.ResendCode(r.Context(), req.Email); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	token, expiresAt, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: newUserResponse(user)})
}

func (h Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	if err := h.userService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"password"`
}

func (h Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.NoContent(w)
}

func (h Handler) me(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	user, err := h.userService.Me(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newUserResponse(user))
}

type updateMeRequest struct {
	Name string `json:"name" validate:"person_name"`
}

func (h Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	var req updateMeRequest
	if err := render.Decode(r, h.validate, &req); err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	user, err := h.userService.UpdateName(r.Context(), caller, req.Name)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newUserResponse(user))
}

func (h Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	data, err := render.Upload(w, r, "file", h.maxUpload)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	user, err := h.userService.UploadAvatar(r.Context(), caller, data)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}
	render.JSON(w, http.StatusOK, newUserResponse(user))
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := middlewares.IdentityFrom(r.Context())

	users, err := h.userService.List(r.Context(), caller)
	if err != nil {
		render.Error(w, h.logger, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	render.JSON(w, http.StatusOK, resp)
}
