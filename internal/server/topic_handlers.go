package server

import (
	"github.com/andriinero/inkspace-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTopics handles GET /api/topics
// @Summary List topics
// @Tags topics
// @Produce json
// @Param limit query int false "Page size, 1-20"
// @Param page query int false "1-based page"
// @Success 200 {array} models.TopicSummary
// @Router /api/topics [get]
func (s *Server) GetTopics(c *fiber.Ctx) error {
	req, err := parsePageRequest(c)
	if err != nil {
		return nil
	}

	res, err := s.topicService.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, res)
}

// GetTopic handles GET /api/topics/:id
func (s *Server) GetTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	topic, err := s.topicService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(topic)
}

// CreateTopic handles POST /api/topics
// @Summary Create topic
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TopicInput true "Topic"
// @Success 201 {object} models.TopicSummary
// @Failure 409 {object} models.ErrorResponse
// @Router /api/topics [post]
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var req service.TopicInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	topic, err := s.topicService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// RenameTopic handles PUT /api/topics/:id (admin only)
func (s *Server) RenameTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.TopicInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.topicService.Rename(c.UserContext(), currentUserID(c), id, req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTopic handles DELETE /api/topics/:id (admin only). Topics with
// posts are refused.
func (s *Server) DeleteTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.topicService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
