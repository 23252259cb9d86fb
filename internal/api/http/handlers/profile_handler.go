package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/api/dto"
	"github.com/spec-kit/bookswap-service/internal/repository"
	"github.com/spec-kit/bookswap-service/internal/service"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

const activityFeedLimit = 20

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	auth     *service.AuthService
	stats    repository.StatsRepository
	activity repository.ActivityRepository
}

func NewProfileHandler(authService *service.AuthService, stats repository.StatsRepository, activity repository.ActivityRepository) *ProfileHandler {
	return &ProfileHandler{auth: authService, stats: stats, activity: activity}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.stats.GetByUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":  dto.NewUserResponse(user),
			"stats": dto.NewStatsResponse(stats),
		},
	})
}

// Activity handles GET /profile/activity.
func (h *ProfileHandler) Activity(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	entries, err := h.activity.ListByUser(c.Context(), user.ID, activityFeedLimit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewActivityResponses(entries)})
}

// Update handles PUT /profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	updated, err := h.auth.UpdateProfile(c.Context(), user.ID, repository.ProfileUpdate{
		FullName:   req.FullName,
		University: req.University,
		StudentID:  req.StudentID,
		Phone:      req.Phone,
		AvatarURL:  req.AvatarURL,
	}, requestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewUserResponse(updated)},
	})
}
