package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/identity"
	"socialgraph/backend/pkg/config"
	"socialgraph/backend/pkg/logger"
)

const cypherDeleteAll = `MATCH (n) WHERE n:User OR n:Post OR n:Comment DETACH DELETE n`

func main() {
	reset := flag.Bool("reset", false, "Delete every user, post and comment before seeding")
	skipConfirm := flag.Bool("y", false, "Skip confirmation prompt for -reset")
	repair := flag.Bool("repair", false, "Only recompute likeCount from LIKES edges")
	force := flag.Bool("force", false, "Seed even if the demo users already exist")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	if *reset && !*skipConfirm {
		log.Warn("WARNING: This will DELETE ALL users, posts and comments from Neo4j!")
		log.Warn("This action cannot be undone.")
		// Use fmt.Print for user input prompt (needs to go to stdout)
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			log.Info("Aborted.")
			os.Exit(0)
		}
	}

	ctx := context.Background()
	store, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword,
		graph.WithDatabase(cfg.Neo4jDatabase),
		graph.WithTxTimeout(cfg.Neo4jTxTimeout),
	)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	repo := graph.NewRepository(store)
	edges := graph.NewRelationships(store)

	if *repair {
		fixed, err := edges.RecountLikes(ctx)
		if err != nil {
			log.Fatal("Failed to recount likes", zap.Error(err))
		}
		log.Info("Like counts repaired", zap.Int64("nodes_fixed", fixed))
		return
	}

	if *reset {
		log.Info("Deleting all data from Neo4j...")
		err := store.Write(ctx, func(tx graph.Tx) error {
			return tx.Execute(ctx, cypherDeleteAll, nil)
		})
		if err != nil {
			log.Fatal("Failed to delete all data", zap.Error(err))
		}
		log.Info("All data deleted successfully")
	}

	log.Info("Creating constraints...")
	if err := graph.EnsureSchema(ctx, store); err != nil {
		log.Fatal("Failed to apply graph schema", zap.Error(err))
	}

	existing, err := repo.FindUserByUsername(ctx, "alice")
	if err != nil {
		log.Fatal("Failed to look up demo user", zap.Error(err))
	}
	if existing != nil && !*force {
		log.Info("Demo users already exist, skipping (use -force or -reset to seed again)",
			zap.String("user_id", existing.ID),
		)
		return
	}

	if err := seed(ctx, repo, edges, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding complete")
}

// seed creates two friends, a post by alice that bob likes and comments on
func seed(ctx context.Context, repo *graph.Repository, edges *graph.Relationships, log *zap.Logger) error {
	hash, err := identity.HashPassword("password123")
	if err != nil {
		return err
	}

	alice, err := repo.CreateUser(ctx, graph.NewUser{
		Username:     "alice",
		FullName:     "Alice Liddell",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Bio:          "Curiouser and curiouser",
		IsAdmin:      true,
	})
	if err != nil {
		return fmt.Errorf("create alice: %w", err)
	}
	bob, err := repo.CreateUser(ctx, graph.NewUser{
		Username:     "bob",
		FullName:     "Bob Builder",
		Email:        "bob@example.com",
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("create bob: %w", err)
	}
	log.Info("Users created", zap.String("alice", alice.ID), zap.String("bob", bob.ID))

	if _, err := edges.Befriend(ctx, alice.ID, bob.Username); err != nil {
		return fmt.Errorf("befriend: %w", err)
	}

	post, err := repo.CreatePost(ctx, graph.NewPost{
		AuthorID: alice.ID,
		ImageURL: "/images/welcome.png",
		Caption:  "Down the rabbit hole",
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	comment, err := edges.LinkComment(ctx, graph.NewComment{
		AuthorID: bob.ID,
		PostID:   post.ID,
		Content:  "Looks fun!",
	})
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}

	if _, err := edges.ToggleLike(ctx, bob.ID, post.ID, graph.TargetPost); err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	if _, err := edges.ToggleLike(ctx, alice.ID, comment.ID, graph.TargetComment); err != nil {
		return fmt.Errorf("like comment: %w", err)
	}

	log.Info("Demo content created",
		zap.String("post_id", post.ID),
		zap.String("comment_id", comment.ID),
	)
	return nil
}
