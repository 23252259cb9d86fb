package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/auth"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/service"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

// requestMeta captures the caller's address and user agent for the
// activity log.
func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// currentUser returns the authenticated user or an unauthorized error
// when the route was wired without the auth middleware.
func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, nil
}
