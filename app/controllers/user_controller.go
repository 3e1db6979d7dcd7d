package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/pkg/ctx"
)

const (
	msgUserNotFound  = "Utilisateur non trouvé"
	msgUsernameTaken = "Ce nom d'utilisateur est déjà utilisé"
)

// UserController serves the /api/users CRUD.
type UserController struct {
	users *repositories.UserRepository
}

func NewUserController(users *repositories.UserRepository) *UserController {
	return &UserController{users: users}
}

type userInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=4,maxbytes=72"`
	Type     string `json:"type"     validate:"nullable,in=admin,staff"`
}

func (in userInput) repo() repositories.UserInput {
	return repositories.UserInput{
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
		Type:     strings.ToLower(strings.TrimSpace(in.Type)),
	}
}

func (c *UserController) Index(x *ctx.Context) {
	users, err := c.users.FindAll(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	x.Success(users)
}

func (c *UserController) Show(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgUserNotFound)
		return
	}

	user, err := c.users.FindByID(x.Context(), id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		x.NotFound(msgUserNotFound)
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	x.Success(user)
}

func (c *UserController) Store(x *ctx.Context) {
	var in userInput
	if !x.BindJSON(&in) {
		return
	}

	user, err := c.users.Create(x.Context(), in.repo())
	if errors.Is(err, repositories.ErrUsernameTaken) {
		x.Error(http.StatusConflict, msgUsernameTaken)
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	x.Created("Utilisateur créé", user)
}

// Update overwrites the user. The password is required and re-hashed on
// every call.
func (c *UserController) Update(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgUserNotFound)
		return
	}

	var in userInput
	if !x.BindJSON(&in) {
		return
	}

	user, err := c.users.Update(x.Context(), id, in.repo())
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		x.NotFound(msgUserNotFound)
	case errors.Is(err, repositories.ErrUsernameTaken):
		x.Error(http.StatusConflict, msgUsernameTaken)
	case err != nil:
		x.ServerError("Erreur serveur", err)
	default:
		x.Message("Utilisateur mis à jour", user)
	}
}

func (c *UserController) Destroy(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgUserNotFound)
		return
	}

	removed, err := c.users.Delete(x.Context(), id)
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	if !removed {
		x.NotFound(msgUserNotFound)
		return
	}
	x.Message("Utilisateur supprimé", nil)
}

// publicUser is what the login response exposes about the account.
type publicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Type     string `json:"type"`
}

func toPublic(u models.User) publicUser {
	return publicUser{ID: u.ID, Username: u.Username, Type: u.Type}
}
