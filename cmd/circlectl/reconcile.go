package main

import (
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute denormalized user and post counters",
	Long:  `Recompute follower, following, post and like counters from the stored relationships and rewrite the ones that drifted.`,
	Args:  cobra.NoArgs,
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	reconciler := services.NewReconciler(env.users, env.posts, env.follows, env.likes, env.comments, env.logger)
	report, err := reconciler.Reconcile(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
