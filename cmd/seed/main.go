// Command main runs the database seeder for inkspace.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/andriinero/inkspace-backend/internal/bootstrap"
	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/middleware"
	"github.com/andriinero/inkspace-backend/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numTopics := flag.Int("topics", defaults.NumTopics, "Number of topics to create")
	postsPerUser := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	commentsPerPost := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	edgesPerUser := flag.Int("edges", defaults.EdgesPerUser, "Follows and bookmarks per user")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 for time based")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.SetupLogger(cfg.Env)

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumTopics:       *numTopics,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		EdgesPerUser:    *edgesPerUser,
		ShouldClean:     *shouldClean,
		Seed:            *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d topics, %d posts, %d comments, %d edges. Password: %s",
		res.Users, res.Topics, res.Posts, res.Comments, res.Edges, seed.DefaultPassword)
}
