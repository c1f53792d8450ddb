package services_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("NotificationService", func() {
	var (
		w     *world
		alice *models.User
		bob   *models.User
	)

	BeforeEach(func() {
		w = newWorld()
		alice = stubs.NewUserStub().Get()
		bob = stubs.NewUserStub().Get()
		w.users.Seed(alice, bob)
	})

	It("tracks unread notifications until they are marked read", func() {
		Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())
		post, err := w.postService.CreatePost(w.ctx, bob, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		_, err = w.likeService.ToggleLike(w.ctx, alice, post.ID.Hex())
		Expect(err).NotTo(HaveOccurred())

		unread, err := w.notifier.UnreadCount(w.ctx, bob.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(unread).To(Equal(int64(2)))

		list, total, err := w.notifier.List(w.ctx, bob.ID, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(list).To(HaveLen(1))

		Expect(w.notifier.MarkRead(w.ctx, bob.ID, list[0].ID)).To(Succeed())
		unread, _ = w.notifier.UnreadCount(w.ctx, bob.ID)
		Expect(unread).To(Equal(int64(1)))

		Expect(w.notifier.MarkAllRead(w.ctx, bob.ID)).To(Succeed())
		unread, _ = w.notifier.UnreadCount(w.ctx, bob.ID)
		Expect(unread).To(BeZero())
	})

	It("does not let a user mark someone else's notification", func() {
		Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())
		list := w.notifications.For(bob.ID)

		Expect(w.notifier.MarkRead(w.ctx, alice.ID, list[0].ID)).To(MatchError(services.ErrNotFound))
	})

	It("never fails the triggering action", func() {
		w.notifications.CreateErr = errors.New("db down")

		Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())
	})

	It("groups notifications by age", func() {
		Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())

		grouped, err := w.notifier.Grouped(w.ctx, bob.ID)

		Expect(err).NotTo(HaveOccurred())
		Expect(grouped.Today).To(HaveLen(1))
		Expect(grouped.Today[0].CreatedAt).To(BeTemporally("~", time.Now(), time.Minute))
	})
})
