package handler

import (
	"net/http"

	"github.com/edvin/crm/internal/api/request"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

type Auth struct {
	svc *core.AuthService
}

func NewAuth(svc *core.AuthService) *Auth {
	return &Auth{svc: svc}
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login godoc
//
//	@Summary		Log in with email and password
//	@Tags			Auth
//	@Param			body body request.Login true "Credentials"
//	@Success		200 {object} handler.loginResponse
//	@Failure		400 {object} map[string]string
//	@Failure		401 {object} map[string]string
//	@Router			/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
