package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	ctxUsername = "username"
	ctxToken    = "token"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Authorization header required"})
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid authorization header format"})
		}

		username, err := s.deps.Sessions.Validate(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid or expired session"})
		}

		c.Set(ctxUsername, username)
		c.Set(ctxToken, token)

		return next(c)
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Message: "Invalid request body"})
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, loginResponse{Message: "Username and password required"})
	}

	if err := s.deps.Users.Authenticate(username, req.Password); err != nil {
		s.l.Warn("Failed login attempt", zap.String("username", username))
		return c.JSON(http.StatusUnauthorized, loginResponse{Message: "Invalid username or password"})
	}

	token := s.deps.Sessions.Create(username)
	s.l.Info("User logged in", zap.String("username", username))

	return c.JSON(http.StatusOK, loginResponse{
		Success:  true,
		Message:  "Login successful",
		Token:    token,
		Username: username,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if token, ok := c.Get(ctxToken).(string); ok {
		s.deps.Sessions.Revoke(token)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}
