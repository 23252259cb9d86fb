package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/api/dto"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/service"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

// MessagesHandler serves per-exchange conversations.
type MessagesHandler struct {
	messages *service.MessageService
}

func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// List handles GET /exchanges/:id/messages. Fetching a conversation
// also marks the other party's messages as read.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	messages, err := h.messages.List(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
}

// Send handles POST /exchanges/:id/messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.MessageSendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	message, err := h.messages.Send(c.Context(), user.ID, c.Params("id"),
		req.Content, domain.MessageType(req.MessageType))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(message)})
}

// UnreadCount handles GET /messages/unread.
func (h *MessagesHandler) UnreadCount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.messages.UnreadCount(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"unread": count},
	})
}
