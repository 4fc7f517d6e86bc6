package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	rnd     *rand.Rand
	maxDays int
}

// NewFactory creates a Factory bound to db. A zero seed picks one from the
// clock.
func NewFactory(db *gorm.DB, seed int64, maxDays int) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:    db,
		faker: gofakeit.New(seed),
		//nolint:gosec // Weak random number generator is fine for seeding
		rnd:     rand.New(rand.NewSource(seed)),
		maxDays: maxDays,
	}
}

// pastDate spreads timestamps over the last maxDays days.
func (f *Factory) pastDate() time.Time {
	back := time.Duration(f.rnd.Intn(f.maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// BuildUser returns an unsaved user. The n suffix keeps usernames unique.
func (f *Factory) BuildUser(n int, passwordHash string) *models.User {
	base := strings.ToLower(f.faker.FirstName() + "_" + f.faker.LastName())
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, base)
	username := fmt.Sprintf("%s%d", base, n)
	return &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   passwordHash,
		Role:       models.RoleUser,
		Bio:        truncate(f.faker.Sentence(12), 280),
		SignUpDate: f.pastDate(),
	}
}

// BuildPost returns an unsaved post whose title and body satisfy the
// length rules.
func (f *Factory) BuildPost(author *models.User, topic *models.Topic) *models.Post {
	body := f.faker.Paragraph(3, 5, 12, "\n\n")
	for len(body) < 100 {
		body += "\n\n" + f.faker.Paragraph(1, 5, 12, " ")
	}
	return &models.Post{
		UserID:    author.ID,
		TopicID:   topic.ID,
		Title:     truncate(strings.TrimSuffix(f.faker.Sentence(f.rnd.Intn(5)+3), "."), 100),
		Body:      truncate(body, 10000),
		LikeCount: int64(f.rnd.Intn(200)),
		Date:      f.pastDate(),
	}
}

// BuildComment returns an unsaved comment on post, dated after it.
func (f *Factory) BuildComment(author *models.User, post *models.Post) *models.Comment {
	text := f.faker.Sentence(f.rnd.Intn(20) + 4)
	for len(text) < 10 {
		text += " " + f.faker.Word()
	}
	date := post.Date.Add(time.Duration(f.rnd.Intn(72*60)+1) * time.Minute)
	if now := time.Now().UTC(); date.After(now) {
		date = now
	}
	return &models.Comment{
		UserID: author.ID,
		PostID: post.ID,
		Body:   truncate(text, 280),
		Date:   date,
	}
}

// TopicNames picks n distinct topic names of at least three characters.
func (f *Factory) TopicNames(n int) []string {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for attempts := 0; len(names) < n && attempts < n*20; attempts++ {
		name := strings.ToLower(f.faker.Hobby())
		if len(name) < 3 || len(name) > 100 || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// CreateUser persists a built user.
func (f *Factory) CreateUser(n int, passwordHash string) (*models.User, error) {
	u := f.BuildUser(n, passwordHash)
	if err := f.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
