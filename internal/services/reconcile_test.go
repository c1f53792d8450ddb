package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("Reconciler", func() {
	It("rewrites counters that drifted from their edges", func() {
		// ARRANGE
		w := newWorld()
		alice := stubs.NewUserStub().Get()
		bob := stubs.NewUserStub().Get()
		w.users.Seed(alice, bob)

		Expect(w.graph.Follow(w.ctx, alice, bob.ID)).To(Succeed())
		post, err := w.postService.CreatePost(w.ctx, bob, "counted", "")
		Expect(err).NotTo(HaveOccurred())
		_, err = w.likeService.ToggleLike(w.ctx, alice, post.ID.Hex())
		Expect(err).NotTo(HaveOccurred())
		_, err = w.postService.Comment(w.ctx, alice, post.ID.Hex(), "hi")
		Expect(err).NotTo(HaveOccurred())

		Expect(w.users.SetCounters(w.ctx, bob.ID, repositories.UserCounters{Followers: 7, Posts: 3, Likes: 0})).To(Succeed())
		Expect(w.posts.SetCounters(w.ctx, post.ID, 12, 0)).To(Succeed())

		// ACT
		report, err := w.reconciler.Reconcile(w.ctx)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(*report).To(Equal(services.ReconcileReport{UsersScanned: 2, UsersFixed: 1, PostsScanned: 1, PostsFixed: 1}))

		fixed := w.reload(bob)
		Expect(fixed.FollowersCount).To(Equal(int64(1)))
		Expect(fixed.PostsCount).To(Equal(int64(1)))
		Expect(fixed.LikesCount).To(Equal(int64(1)))

		fixedPost := w.reloadPost(post)
		Expect(fixedPost.LikesCount).To(Equal(int64(1)))
		Expect(fixedPost.CommentsCount).To(Equal(int64(1)))
	})

	It("leaves consistent counters alone", func() {
		w := newWorld()
		alice := stubs.NewUserStub().Get()
		w.users.Seed(alice)
		_, err := w.postService.CreatePost(w.ctx, alice, "fine", "")
		Expect(err).NotTo(HaveOccurred())

		report, err := w.reconciler.Reconcile(w.ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.UsersFixed).To(BeZero())
		Expect(report.PostsFixed).To(BeZero())
	})
})
