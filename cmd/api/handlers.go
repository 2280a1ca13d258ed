package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/infra/auth"
	"github.com/giovaniif/instrument-closet/use_cases/accounts"
)

type handlers struct {
	app *App
}

// actor resolves the token claims to a stored user. It writes the error
// response itself and reports false when the request must stop.
func (h *handlers) actor(c *gin.Context) (user.Actor, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		writeError(c, fault.Unauthorized("Must be logged in."))
		return user.Actor{}, false
	}
	actor, err := h.app.Accounts.Actor(c.Request.Context(), claims.Username, claims.IsAdmin)
	if err != nil {
		writeError(c, err)
		return user.Actor{}, false
	}
	return actor, true
}

func paramId(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer.")
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=25"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

type UserPatchRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
}

func (h *handlers) token(c *gin.Context) {
	var req TokenRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.app.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": out.Token})
}

func (h *handlers) register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.app.Accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": out.Token})
}

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.app.Accounts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *handlers) getUser(c *gin.Context) {
	u, err := h.app.Accounts.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *handlers) updateUser(c *gin.Context) {
	var req UserPatchRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.app.Accounts.Update(c.Request.Context(), c.Param("username"), user.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *handlers) deleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.app.Accounts.Delete(c.Request.Context(), username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": username})
}
