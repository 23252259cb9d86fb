package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/api/dto"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/repository"
	"github.com/spec-kit/bookswap-service/internal/service"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

// ExchangesHandler serves exchange requests and transitions.
type ExchangesHandler struct {
	exchanges *service.ExchangeService
}

func NewExchangesHandler(exchanges *service.ExchangeService) *ExchangesHandler {
	return &ExchangesHandler{exchanges: exchanges}
}

// List handles GET /exchanges.
func (h *ExchangesHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	filter := repository.ExchangeFilter{}
	switch role := c.Query("role"); role {
	case "", "buying", "selling":
		filter.Role = role
	default:
		return apperrors.NewValidationError("role must be buying or selling", nil)
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.ExchangeStatus(raw)
		if !status.Valid() {
			return apperrors.NewValidationError("invalid status filter", nil)
		}
		filter.Status = &status
	}

	exchanges, err := h.exchanges.ListExchanges(c.Context(), user.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExchangeResponses(exchanges)})
}

// Create handles POST /exchanges.
func (h *ExchangesHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ExchangeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	exchange, err := h.exchanges.CreateExchange(c.Context(), user.ID, service.ExchangeCreateInput{
		BookID:          req.BookID,
		Message:         req.Message,
		MeetingLocation: req.MeetingLocation,
		MeetingTime:     req.MeetingTime,
	}, requestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewExchangeResponse(exchange)})
}

// UpdateStatus handles PATCH /exchanges/:id/status.
func (h *ExchangesHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ExchangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	exchange, err := h.exchanges.UpdateStatus(c.Context(), user.ID, c.Params("id"),
		domain.ExchangeStatus(req.Status), requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExchangeResponse(exchange)})
}
