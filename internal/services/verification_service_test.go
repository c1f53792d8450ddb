package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("VerificationService", func() {
	var (
		w     *world
		user  *models.User
		admin *models.User
	)

	BeforeEach(func() {
		w = newWorld()
		user = stubs.NewUserStub().Get()
		admin = stubs.NewUserStub().Admin().Get()
		w.users.Seed(user, admin)
	})

	Describe("Submit", func() {
		It("queues a pending request with a profile snapshot", func() {
			req, err := w.verification.Submit(w.ctx, user, "public figure")

			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(models.VerificationPending))
			Expect(req.Handle).To(Equal(user.Handle))

			pending, err := w.verification.Pending(w.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})

		It("rejects a second pending request", func() {
			_, err := w.verification.Submit(w.ctx, user, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = w.verification.Submit(w.ctx, user, "")
			Expect(err).To(MatchError(services.ErrPendingRequest))
		})

		It("rejects already verified users", func() {
			verified := stubs.NewUserStub().Verified().Get()
			w.users.Seed(verified)

			_, err := w.verification.Submit(w.ctx, verified, "")
			Expect(err).To(MatchError(services.ErrAlreadyVerified))
		})
	})

	Describe("Decide", func() {
		var req *models.VerificationRequest

		BeforeEach(func() {
			var err error
			req, err = w.verification.Submit(w.ctx, user, "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves the request and marks the identity verified", func() {
			// ACT
			decided, err := w.verification.Decide(w.ctx, admin, req.ID, models.VerificationApproved)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(models.VerificationApproved))
			Expect(*decided.ReviewedBy).To(Equal(admin.ID))
			Expect(decided.ReviewedAt).NotTo(BeNil())
			Expect(w.reload(user).IsVerified).To(BeTrue())
			Expect(w.sessions.Invalidated()).To(ContainElement(user.ID))
			Expect(w.publisher.Types()).To(ContainElement(events.VerificationDecided))
		})

		It("rejects without touching the identity", func() {
			decided, err := w.verification.Decide(w.ctx, admin, req.ID, models.VerificationRejected)

			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(models.VerificationRejected))
			Expect(w.reload(user).IsVerified).To(BeFalse())
		})

		It("refuses non-admin reviewers", func() {
			_, err := w.verification.Decide(w.ctx, user, req.ID, models.VerificationApproved)

			Expect(err).To(MatchError(services.ErrForbidden))
		})

		It("refuses unknown outcomes", func() {
			_, err := w.verification.Decide(w.ctx, admin, req.ID, "maybe")

			Expect(err).To(MatchError(services.ErrInvalidInput))
		})

		It("refuses to flip a decided request", func() {
			_, err := w.verification.Decide(w.ctx, admin, req.ID, models.VerificationRejected)
			Expect(err).NotTo(HaveOccurred())

			_, err = w.verification.Decide(w.ctx, admin, req.ID, models.VerificationApproved)
			Expect(err).To(MatchError(services.ErrAlreadyDecided))
		})

		It("re-applies the same outcome to repair a half-applied approval", func() {
			_, err := w.verification.Decide(w.ctx, admin, req.ID, models.VerificationApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.users.SetVerified(w.ctx, user.ID, false)).To(Succeed())

			_, err = w.verification.Decide(w.ctx, admin, req.ID, models.VerificationApproved)

			Expect(err).NotTo(HaveOccurred())
			Expect(w.reload(user).IsVerified).To(BeTrue())
		})

		It("fails for an unknown request", func() {
			_, err := w.verification.Decide(w.ctx, admin, 9999, models.VerificationApproved)

			Expect(err).To(MatchError(services.ErrNotFound))
		})
	})
})
