package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("GraphService", func() {
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

	Describe("Follow", func() {
		It("creates a directed edge and updates both counters", func() {
			// ACT
			err := w.graph.Follow(w.ctx, alice, bob.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			following, err := w.graph.IsFollowing(w.ctx, alice.ID, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(following).To(BeTrue())

			reverse, err := w.graph.IsFollowing(w.ctx, bob.ID, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reverse).To(BeFalse())

			Expect(w.reload(alice).FollowingCount).To(Equal(int64(1)))
			Expect(w.reload(bob).FollowersCount).To(Equal(int64(1)))
			Expect(w.notifications.For(bob.ID)).To(HaveLen(1))
			Expect(w.publisher.Types()).To(Equal([]string{events.UserFollowed}))
		})

		It("rejects following yourself", func() {
			Expect(w.graph.Follow(w.ctx, alice, alice.ID)).To(MatchError(services.ErrSelfFollow))
		})

		It("rejects an unknown target", func() {
			Expect(w.graph.Follow(w.ctx, alice, 9999)).To(MatchError(services.ErrNotFound))
		})

		It("rejects a duplicate edge without touching counters", func() {
			Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())

			Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(MatchError(services.ErrAlreadyFollowing))
			Expect(w.reload(bob).FollowersCount).To(Equal(int64(1)))
		})
	})

	Describe("Unfollow", func() {
		It("removes the edge and decrements both counters", func() {
			Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())

			Expect(w.graph.Unfollow(w.ctx, alice.ID, bob.ID)).To(Succeed())

			following, _ := w.graph.IsFollowing(w.ctx, alice.ID, bob.ID)
			Expect(following).To(BeFalse())
			Expect(w.reload(alice).FollowingCount).To(BeZero())
			Expect(w.reload(bob).FollowersCount).To(BeZero())
		})

		It("fails when there is no edge", func() {
			Expect(w.graph.Unfollow(w.ctx, alice.ID, bob.ID)).To(MatchError(services.ErrNotFollowing))
		})
	})

	Describe("Followers and Following", func() {
		It("lists compact users on both sides of the edge", func() {
			Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())

			followers, err := w.graph.Followers(w.ctx, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(followers).To(ConsistOf(alice.ToCompact()))

			following, err := w.graph.Following(w.ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(following).To(ConsistOf(bob.ToCompact()))
		})
	})

	Describe("CanSeePosts", func() {
		It("gates a private account on following", func() {
			private := stubs.NewUserStub().Private().Get()
			w.users.Seed(private)

			allowed, err := w.graph.CanSeePosts(w.ctx, alice.ID, private)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())

			Expect(w.graph.Follow(w.ctx, alice, private.ID)).To(Succeed())
			allowed, err = w.graph.CanSeePosts(w.ctx, alice.ID, private)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})
	})
})
