package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/anonto42/circle/backend/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "circlectl [command] [flags]",
	Short:         "Maintenance tools for the circle backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// env bundles the connections every subcommand needs
type env struct {
	cfg    *config.Config
	db     *config.DB
	logger *slog.Logger

	users         repositories.UserRepository
	posts         repositories.PostRepository
	follows       repositories.FollowRepository
	likes         repositories.LikeRepository
	comments      repositories.CommentRepository
	verifications repositories.VerificationRepository
	publisher     events.Publisher
}

func openEnv() (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:           cfg,
		db:            db,
		logger:        logger,
		users:         repositories.NewPostgresUserRepository(db.Postgres),
		posts:         repositories.NewMongoPostRepository(db.MongoDB),
		follows:       repositories.NewPostgresFollowRepository(db.Postgres),
		likes:         repositories.NewPostgresLikeRepository(db.Postgres),
		comments:      repositories.NewPostgresCommentRepository(db.Postgres),
		verifications: repositories.NewPostgresVerificationRepository(db.Postgres),
		publisher:     events.NopPublisher{Logger: logger},
	}, nil
}

func (e *env) Close() {
	e.db.CloseDB()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.SetOut(os.Stdout)
}
