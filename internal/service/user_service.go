package service

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/validation"
)

// LatestUsersCount is how many users the latest-users list shows.
const LatestUsersCount = 3

// UpdateBioInput is the bio update payload.
type UpdateBioInput struct {
	Bio string `json:"bio" validate:"max=280"`
}

type UserService struct {
	users    repository.UserRepository
	cascade  *CascadeService
	cache    *cache.Store
	pageSize int
}

func NewUserService(users repository.UserRepository, cascade *CascadeService, store *cache.Store, pageSize int) *UserService {
	return &UserService{users: users, cascade: cascade, cache: store, pageSize: pageSize}
}

// IsAdmin reads the role from the store, so a demotion takes effect on the
// next request.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

// Exists reports whether userID still has an account.
func (s *UserService) Exists(ctx context.Context, userID uint) (bool, error) {
	return s.users.Exists(ctx, userID)
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := models.NewProfile(user)
	return &p, nil
}

func (s *UserService) UpdateBio(ctx context.Context, userID uint, in UpdateBioInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if err := s.users.UpdateBio(ctx, userID, in.Bio); err != nil {
		return err
	}
	s.cache.InvalidateAuthors(ctx)
	return nil
}

// ListAuthors pages through every user as a public author card.
func (s *UserService) ListAuthors(ctx context.Context, req PageRequest) (*PageResult[models.AuthorCard], error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	page := ResolvePage(req, s.pageSize, total)

	var cards []models.AuthorCard
	err = s.cache.Aside(ctx, cache.AuthorListKey(page.Limit, page.Index), &cards, cache.AuthorListTTL, func() error {
		users, err := s.users.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		cards = make([]models.AuthorCard, 0, len(users))
		for i := range users {
			cards = append(cards, models.NewAuthorCard(&users[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PageResult[models.AuthorCard]{Items: cards, Total: total, Page: page}, nil
}

func (s *UserService) GetAuthor(ctx context.Context, id uint) (*models.AuthorCard, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	card := models.NewAuthorCard(user)
	return &card, nil
}

// LatestUsers returns the most recently registered users.
func (s *UserService) LatestUsers(ctx context.Context) ([]models.AuthorCard, error) {
	var cards []models.AuthorCard
	err := s.cache.Aside(ctx, cache.LatestUsersKey, &cards, cache.LatestUsersTTL, func() error {
		users, err := s.users.Latest(ctx, LatestUsersCount)
		if err != nil {
			return err
		}
		cards = make([]models.AuthorCard, 0, len(users))
		for i := range users {
			cards = append(cards, models.NewAuthorCard(&users[i]))
		}
		return nil
	})
	return cards, err
}

// DeleteUser removes targetID with its full cascade. Users may delete
// themselves; admins may delete anyone.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := authorizeOwner(ctx, s.IsAdmin, actorID, targetID, "You can only delete your own account"); err != nil {
		return err
	}
	return s.cascade.DeleteUser(ctx, targetID)
}
