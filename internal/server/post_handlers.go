package server

import (
	"strings"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/service"
	"github.com/andriinero/inkspace-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// parseFeedInput reads the feed query. Every malformed parameter is
// reported at once.
func parseFeedInput(c *fiber.Ctx) (service.FeedInput, error) {
	var in service.FeedInput
	var errs []error

	limit, err := queryInt(c, "limit")
	errs = append(errs, err)
	page, err := queryInt(c, "page")
	errs = append(errs, err)
	in.PageRequest = service.PageRequest{Limit: limit, Page: page}

	in.Random, err = queryInt(c, "random")
	errs = append(errs, err)
	in.AuthorID, err = queryID(c, "userid")
	errs = append(errs, err)
	in.FollowListOf, err = queryID(c, "followList")
	errs = append(errs, err)
	in.IgnoreListOf, err = queryID(c, "ignoreList")
	errs = append(errs, err)

	if topic := strings.TrimSpace(c.Query("topic")); topic != "" {
		ref := service.ParseTopicRef(topic)
		in.Topic = &ref
	}

	if err := validation.Merge(errs...); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return in, errResponseWritten
	}
	return in, nil
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first, or a random sample. Filters combine.
// @Tags posts
// @Produce json
// @Param limit query int false "Page size, 1-20"
// @Param page query int false "1-based page"
// @Param topic query string false "Topic id or name"
// @Param random query int false "Random sample size"
// @Param userid query int false "Author id"
// @Param followList query int false "Only authors this user follows"
// @Param ignoreList query int false "Drop what this user ignores"
// @Success 200 {array} models.PostSummary
// @Router /api/posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	in, err := parseFeedInput(c)
	if err != nil {
		return nil
	}

	res, err := s.feedService.Feed(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	if in.Random != nil {
		return c.JSON(res.Items)
	}
	return respondPage(c, res)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /api/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Description Author or admin only. Absent fields are unchanged.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} models.PostDetail
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Update(c.UserContext(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLikes handles GET /api/posts/:id/likes
// @Summary Like count
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{likes=int}
// @Router /api/posts/{id}/likes [get]
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.postService.Likes(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": n})
}

// LikePost handles PUT /api/posts/:id/likes
// @Summary Like post
// @Description Adds one like. Every call counts.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{likes=int}
// @Router /api/posts/{id}/likes [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.postService.Like(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": n})
}
