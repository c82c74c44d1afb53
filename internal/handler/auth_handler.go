package handler

import (
	"github.com/gin-gonic/gin"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
	"mailrelay/internal/service"
)

const sessionCookieMaxAge = 30 * 24 * 60 * 60

type AuthHandler struct {
	authService  *service.AuthService
	cookieName   string
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, apierr.Validation("Name, email and a password of at least 8 characters are required"))
		return
	}

	u, err := h.authService.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		Error(c, err)
		return
	}

	ok(c, gin.H{"id": u.ID, "email": u.Email})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login. On success the session
// token is set as an http-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, apierr.Validation("Email and password are required"))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Error(c, err)
		return
	}

	c.SetCookie(h.cookieName, token, sessionCookieMaxAge, "/", "", h.secureCookie, true)
	ok(c, gin.H{"status": "ok"})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	ok(c, gin.H{"status": "ok"})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	v, exists := c.Get(ContextUser)
	if !exists {
		Error(c, apierr.Authentication("Not signed in"))
		return
	}

	user := v.(*model.AuthContext)
	ok(c, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}
