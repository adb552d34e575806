package handler

import (
	"net/http"

	"pantry-be/internal/auth"
	"pantry-be/internal/user"

	"github.com/gin-gonic/gin"
)

const tokenCookieMaxAge = 24 * 60 * 60

func setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, token, tokenCookieMaxAge, "/", "", c.Request.TLS != nil, true)
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var in user.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	setTokenCookie(c, res.Token)
	c.JSON(http.StatusCreated, res)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var in user.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.Users.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	setTokenCookie(c, res.Token)
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(auth.AccessTokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Me(c *gin.Context) {
	u, err := h.Users.Me(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
