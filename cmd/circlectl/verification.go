package main

import (
	"fmt"
	"strconv"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/spf13/cobra"
)

var reviewerID uint

var verificationCmd = &cobra.Command{
	Use:     "verification",
	Aliases: []string{"verify"},
	Short:   "Review verification requests",
}

var verificationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending verification requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVerification(func(env *env, svc *services.VerificationService) error {
			pending, err := svc.Pending(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, pending)
		})
	},
}

var verificationApproveCmd = &cobra.Command{
	Use:   "approve <request-id>",
	Short: "Approve a verification request and mark its user verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(cmd, args[0], models.VerificationApproved)
	},
}

var verificationRejectCmd = &cobra.Command{
	Use:   "reject <request-id>",
	Short: "Reject a verification request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(cmd, args[0], models.VerificationRejected)
	},
}

func init() {
	for _, c := range []*cobra.Command{verificationApproveCmd, verificationRejectCmd} {
		c.Flags().UintVar(&reviewerID, "reviewer", 0, "id of the admin account recorded as reviewer")
		_ = c.MarkFlagRequired("reviewer")
	}
	verificationCmd.AddCommand(verificationListCmd, verificationApproveCmd, verificationRejectCmd)
	rootCmd.AddCommand(verificationCmd)
}

func withVerification(fn func(*env, *services.VerificationService) error) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	// the server's identity cache picks the change up once its SESSION_TTL passes
	svc := services.NewVerificationService(env.verifications, env.users, noopInvalidator{}, env.publisher, env.logger)
	return fn(env, svc)
}

func decide(cmd *cobra.Command, rawID, outcome string) error {
	requestID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request id %q", rawID)
	}

	return withVerification(func(env *env, svc *services.VerificationService) error {
		reviewer, err := env.users.GetUserByID(cmd.Context(), reviewerID)
		if err != nil {
			return fmt.Errorf("load reviewer %d: %w", reviewerID, err)
		}
		req, err := svc.Decide(cmd.Context(), reviewer, uint(requestID), outcome)
		if err != nil {
			return err
		}
		return printJSON(cmd, req)
	})
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(uint) {}
