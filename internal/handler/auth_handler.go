package handler

import (
	"errors"
	"net/http"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/middleware"
	"frota/internal/service"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	userService  service.UserService
	gate         *middleware.Gate
	loginLimiter gin.HandlerFunc
}

// NewAuthHandler wires the session endpoints. loginLimiter may be nil.
func NewAuthHandler(authService service.AuthService, userService service.UserService, gate *middleware.Gate, loginLimiter gin.HandlerFunc) *AuthHandler {
	if loginLimiter == nil {
		loginLimiter = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{authService: authService, userService: userService, gate: gate, loginLimiter: loginLimiter}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	{
		group.GET("/login", h.LoginPage)
		group.POST("/login", h.loginLimiter, h.Login)
		group.POST("/logout", h.Logout)
		group.GET("/access-denied", h.AccessDenied)
		group.GET("/me", h.gate.RequireSession(), h.Me)
		group.PUT("/password", h.gate.RequireSession(), h.ChangePassword)
	}
}

// LoginPage tells the client where a successful login will land
// @Summary      Login landing info
// @Tags         auth
// @Produce      json
// @Param        returnUrl  query     string  false  "Page to return to after login"
// @Success      200        {object}  response.Response{data=object}
// @Router       /auth/login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"return_url": auth.SafeReturnURL(c.Query("returnUrl")),
	}))
}

// Login handles POST /auth/login and sets the session cookie
// @Summary      Login
// @Description  Authenticates an operator by login and password and issues the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.Query("returnUrl")
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.gate.SetSessionCookie(c, res.Credential, res.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"session":     service.ToSessionResponse(res.Credential),
		"token":       res.Token,
		"redirect_to": res.RedirectTo,
	}))
}

// Logout clears the session cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.gate.ClearSessionCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// AccessDenied is where the gate sends operators lacking a grant
func (h *AuthHandler) AccessDenied(c *gin.Context) {
	c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: your role does not allow this page"))
}

// Me returns the current session
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.SessionResponse}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	cred, _ := middleware.CredentialFrom(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.ToSessionResponse(cred)))
}

// ChangePassword lets the logged in operator set a new password
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangePasswordRequest  true  "New password"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cred, _ := middleware.CredentialFrom(c)
	if err := h.userService.ChangePassword(c.Request.Context(), cred.UserID, req); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.gate.ClearSessionCookie(c)
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Password changed"))
}
