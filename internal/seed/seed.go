// Package seed fills a database with fake users, topics, posts, comments
// and relationship edges for development.
package seed

import (
	"fmt"
	"log/slog"

	"github.com/andriinero/inkspace-backend/internal/middleware"
	"github.com/andriinero/inkspace-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumTopics       int
	PostsPerUser    int
	CommentsPerPost int
	// EdgesPerUser is how many follows, ignores and bookmarks each user gets.
	EdgesPerUser int
	ShouldClean  bool
	Seed         int64
	MaxDays      int
}

// DefaultOptions is a small but connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:        20,
		NumTopics:       8,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		EdgesPerUser:    3,
	}
}

// Result counts what Seed created.
type Result struct {
	Users    int
	Topics   int
	Posts    int
	Comments int
	Edges    int
}

// Seed populates db. With ShouldClean every content table is emptied first.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log := middleware.Logger
	if opts.NumUsers < 1 || opts.NumTopics < 1 {
		return nil, fmt.Errorf("seed needs at least one user and one topic")
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
		log.Info("cleared existing data")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	f := NewFactory(db, opts.Seed, opts.MaxDays)
	res := &Result{}

	var users []*models.User
	var topics []*models.Topic
	var posts []*models.Post

	err = db.Transaction(func(tx *gorm.DB) error {
		f.db = tx

		for i := 0; i < opts.NumUsers; i++ {
			u, err := f.CreateUser(i, string(hash))
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			users = append(users, u)
		}
		res.Users = len(users)

		for _, name := range f.TopicNames(opts.NumTopics) {
			t := &models.Topic{Name: name}
			if err := tx.Where(models.Topic{Name: name}).FirstOrCreate(t).Error; err != nil {
				return fmt.Errorf("create topic %s: %w", name, err)
			}
			topics = append(topics, t)
		}
		res.Topics = len(topics)
		if len(topics) == 0 {
			return fmt.Errorf("no topic names generated")
		}

		for _, u := range users {
			for j := 0; j < opts.PostsPerUser; j++ {
				p := f.BuildPost(u, topics[f.rnd.Intn(len(topics))])
				if err := tx.Create(p).Error; err != nil {
					return fmt.Errorf("create post: %w", err)
				}
				posts = append(posts, p)
			}
		}
		res.Posts = len(posts)

		for _, p := range posts {
			for j := 0; j < opts.CommentsPerPost; j++ {
				c := f.BuildComment(users[f.rnd.Intn(len(users))], p)
				if err := tx.Create(c).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				res.Comments++
			}
		}

		n, err := createEdges(tx, f, users, topics, posts, opts.EdgesPerUser)
		if err != nil {
			return err
		}
		res.Edges = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("database seeding completed",
		slog.Int("users", res.Users), slog.Int("topics", res.Topics), slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments), slog.Int("edges", res.Edges))
	return res, nil
}

// createEdges gives every user up to perUser follows plus one ignored
// user, topic and post and a bookmark each. Self edges are skipped and
// duplicates ignored.
func createEdges(tx *gorm.DB, f *Factory, users []*models.User, topics []*models.Topic, posts []*models.Post, perUser int) (int, error) {
	if perUser <= 0 || len(users) < 2 {
		return 0, nil
	}
	ignoreDup := tx.Clauses(clause.OnConflict{DoNothing: true})
	count := 0
	insert := func(row any) error {
		result := ignoreDup.Create(row)
		count += int(result.RowsAffected)
		return result.Error
	}

	for _, u := range users {
		other := func() *models.User {
			for {
				if o := users[f.rnd.Intn(len(users))]; o.ID != u.ID {
					return o
				}
			}
		}
		for i := 0; i < perUser; i++ {
			if err := insert(&models.Follow{FollowerID: u.ID, FolloweeID: other().ID}); err != nil {
				return count, fmt.Errorf("create follow: %w", err)
			}
		}
		if err := insert(&models.IgnoredUser{UserID: u.ID, IgnoredUserID: other().ID}); err != nil {
			return count, fmt.Errorf("create ignored user: %w", err)
		}
		if err := insert(&models.IgnoredTopic{UserID: u.ID, TopicID: topics[f.rnd.Intn(len(topics))].ID}); err != nil {
			return count, fmt.Errorf("create ignored topic: %w", err)
		}
		if len(posts) == 0 {
			continue
		}
		if err := insert(&models.IgnoredPost{UserID: u.ID, PostID: posts[f.rnd.Intn(len(posts))].ID}); err != nil {
			return count, fmt.Errorf("create ignored post: %w", err)
		}
		for i := 0; i < perUser; i++ {
			if err := insert(&models.Bookmark{UserID: u.ID, PostID: posts[f.rnd.Intn(len(posts))].ID}); err != nil {
				return count, fmt.Errorf("create bookmark: %w", err)
			}
		}
	}
	return count, nil
}

// clearData empties every content table, children first.
func clearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE users SET profile_image_id = NULL").Error; err != nil {
			return fmt.Errorf("detach profile images: %w", err)
		}
		for _, table := range []string{
			"bookmarks", "ignored_posts", "ignored_topics", "ignored_users", "follows",
			"comments", "posts", "topics", "images", "users",
		} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
