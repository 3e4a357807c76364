package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sluggram/backend/internal/middleware"
	"github.com/sluggram/backend/internal/models"
	"github.com/sluggram/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to user profiles.
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user profile routes. The public profile
// lookup stays unauthenticated.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/users/me", h.GetMe, requireAuth)
	g.PUT("/users/me", h.UpdateMe, requireAuth)
	g.GET("/users/:id", h.GetUser)
}

// GetMe returns the caller's profile, creating it on first access seeded
// from the token claims. Profile fields beyond email/name/avatar start null.
func (h *UserHandler) GetMe(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)

	seed := &models.User{
		Auth0ID: identity.SubjectID,
		Email:   identity.Email,
	}
	if identity.Name != "" {
		name := identity.Name
		seed.Name = &name
	}
	if identity.Avatar != "" {
		avatar := identity.Avatar
		seed.AvatarURL = &avatar
	}

	user, err := h.userRepository.GetOrCreate(c.Request().Context(), seed)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial update to the caller's profile.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.UpdateProfile(c.Request().Context(), identity.SubjectID, &req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser returns a public profile resolved by internal id or subject id.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetByIDOrSubject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}
