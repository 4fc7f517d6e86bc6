package server

import (
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EdgeRequest is the body for adding a bookmark, follow or ignore entry.
type EdgeRequest struct {
	ID uint `json:"id"`
}

// ProfileImageRequest points the profile at an uploaded image.
type ProfileImageRequest struct {
	ImageID uint `json:"image_id"`
}

// GetAuthors handles GET /api/authors
// @Summary List authors
// @Tags authors
// @Produce json
// @Param limit query int false "Page size, 1-20"
// @Param page query int false "1-based page"
// @Success 200 {array} models.AuthorCard
// @Router /api/authors [get]
func (s *Server) GetAuthors(c *fiber.Ctx) error {
	req, err := parsePageRequest(c)
	if err != nil {
		return nil
	}

	res, err := s.userService.ListAuthors(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, res)
}

// GetAuthor handles GET /api/authors/:id
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	author, err := s.userService.GetAuthor(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(author)
}

// GetLatestUsers handles GET /api/users
// @Summary Newest users
// @Tags authors
// @Produce json
// @Success 200 {array} models.AuthorCard
// @Router /api/users [get]
func (s *Server) GetLatestUsers(c *fiber.Ctx) error {
	users, err := s.userService.LatestUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete user
// @Description Self or admin. Removes the user's posts, comments and references.
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Router /api/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateBio handles PUT /api/profile/bio
func (s *Server) UpdateBio(c *fiber.Ctx) error {
	var req service.UpdateBioInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.userService.UpdateBio(c.UserContext(), currentUserID(c), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePassword handles PUT /api/profile/password
// @Summary Change password
// @Tags profile
// @Accept json
// @Security BearerAuth
// @Param request body service.ChangePasswordInput true "New password"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /api/profile/password [put]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.ChangePassword(c.UserContext(), currentUserID(c), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateProfileImage handles PUT /api/profile/image
func (s *Server) UpdateProfileImage(c *fiber.Ctx) error {
	var req ProfileImageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.imageService.SetProfileImage(c.UserContext(), currentUserID(c), req.ImageID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBookmarks handles GET /api/profile/bookmarks
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	req, err := parsePageRequest(c)
	if err != nil {
		return nil
	}

	res, err := s.bookmarkService.List(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, res)
}

// AddBookmark handles POST /api/profile/bookmarks
// @Summary Bookmark a post
// @Tags profile
// @Accept json
// @Security BearerAuth
// @Param request body EdgeRequest true "Post to bookmark"
// @Success 201
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/profile/bookmarks [post]
func (s *Server) AddBookmark(c *fiber.Ctx) error {
	var req EdgeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.bookmarkService.Add(c.UserContext(), currentUserID(c), req.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// RemoveBookmark handles DELETE /api/profile/bookmarks/:postid
func (s *Server) RemoveBookmark(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postid")
	if err != nil {
		return nil
	}

	if err := s.bookmarkService.Remove(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/profile/users-following
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	req, err := parsePageRequest(c)
	if err != nil {
		return nil
	}

	res, err := s.relService.ListFollowers(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, res)
}

// listEdges serves the caller's follow or ignore list of the given kind.
func (s *Server) listEdges(kind models.EdgeKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parsePageRequest(c)
		if err != nil {
			return nil
		}
		ctx, uid := c.UserContext(), currentUserID(c)

		switch kind {
		case models.EdgeIgnoreTopic:
			res, err := s.relService.ListTopics(ctx, uid, req)
			if err != nil {
				return respondError(c, err)
			}
			return respondPage(c, res)
		case models.EdgeIgnorePost:
			res, err := s.relService.ListPosts(ctx, kind, uid, req)
			if err != nil {
				return respondError(c, err)
			}
			return respondPage(c, res)
		default:
			res, err := s.relService.ListUsers(ctx, kind, uid, req)
			if err != nil {
				return respondError(c, err)
			}
			return respondPage(c, res)
		}
	}
}

func (s *Server) addEdge(kind models.EdgeKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req EdgeRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}

		if err := s.relService.Add(c.UserContext(), kind, currentUserID(c), req.ID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusCreated)
	}
}

func (s *Server) removeEdge(kind models.EdgeKind, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, param)
		if err != nil {
			return nil
		}

		if err := s.relService.Remove(c.UserContext(), kind, currentUserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
