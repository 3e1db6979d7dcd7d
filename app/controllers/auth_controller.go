package controllers

import (
	"errors"

	"github.com/shashiranjanraj/commandes/app/services"
	"github.com/shashiranjanraj/commandes/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a signed token.
func (c *AuthController) Login(x *ctx.Context) {
	var in loginInput
	if !x.BindJSON(&in) {
		return
	}

	res, err := c.service.Login(x.Context(), in.Username, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		x.Logger().Info("login rejected", "username", in.Username, "ip", x.ClientIP())
		x.Unauthorized("Identifiants invalides")
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}

	x.Message("Connexion réussie", map[string]interface{}{
		"token": res.Token,
		"user":  toPublic(res.User),
	})
}
