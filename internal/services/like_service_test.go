package services_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("LikeService", func() {
	var (
		w      *world
		viewer *models.User
		author *models.User
		post   *models.Post
	)

	BeforeEach(func() {
		w = newWorld()
		viewer = stubs.NewUserStub().Get()
		author = stubs.NewUserStub().Get()
		w.users.Seed(viewer, author)
		post = stubs.NewPostStub().By(author).WithLikes(4).Get()
		w.posts.Seed(post)
	})

	Context("when the viewer has not liked the post", func() {
		It("records the like and increments the counter", func() {
			// ACT
			result, err := w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Liked).To(BeTrue())
			Expect(result.LikesCount).To(Equal(int64(5)))
			Expect(w.reloadPost(post).LikesCount).To(Equal(int64(5)))
			Expect(w.reload(author).LikesCount).To(Equal(int64(1)))

			notes := w.notifications.For(author.ID)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Type).To(Equal(models.NotificationLike))
			Expect(w.publisher.Types()).To(ContainElement(events.PostLiked))
		})
	})

	It("is its own inverse", func() {
		// ACT
		first, err := w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())
		Expect(err).NotTo(HaveOccurred())
		second, err := w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())
		Expect(err).NotTo(HaveOccurred())

		// ASSERT
		Expect(first.Liked).To(BeTrue())
		Expect(second.Liked).To(BeFalse())
		Expect(second.LikesCount).To(Equal(int64(4)))

		status, err := w.likeService.Status(w.ctx, viewer.ID, post.ID.Hex())
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Liked).To(BeFalse())
		Expect(status.LikesCount).To(Equal(int64(4)))
		Expect(w.reload(author).LikesCount).To(BeZero())
	})

	It("does not notify the author about liking their own post", func() {
		_, err := w.likeService.ToggleLike(w.ctx, author, post.ID.Hex())

		Expect(err).NotTo(HaveOccurred())
		Expect(w.notifications.For(author.ID)).To(BeEmpty())
	})

	Context("when a toggle for the same pair is already in flight", func() {
		It("rejects the second request as busy", func() {
			// ARRANGE
			release, ok, err := w.guard.Acquire(w.ctx, fmt.Sprintf("like:%d:%s", viewer.ID, post.ID.Hex()))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// ACT
			_, err = w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())

			// ASSERT
			Expect(err).To(MatchError(services.ErrBusy))
			Expect(w.reloadPost(post).LikesCount).To(Equal(int64(4)))

			release()
			_, err = w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not block another viewer", func() {
			release, _, _ := w.guard.Acquire(w.ctx, fmt.Sprintf("like:%d:%s", viewer.ID, post.ID.Hex()))
			defer release()

			result, err := w.likeService.ToggleLike(w.ctx, author, post.ID.Hex())

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Liked).To(BeTrue())
		})
	})

	Context("when the counter write fails", func() {
		It("returns the error and keeps the like edge", func() {
			w.posts.AdjustErr = errors.New("mongo unavailable")

			_, err := w.likeService.ToggleLike(w.ctx, viewer, post.ID.Hex())

			Expect(err).To(MatchError(ContainSubstring("counter not updated")))
			liked, _ := w.likes.HasUserLikedPost(w.ctx, post.ID.Hex(), viewer.ID)
			Expect(liked).To(BeTrue())
		})
	})

	It("fails with not found for a missing post", func() {
		_, err := w.likeService.ToggleLike(w.ctx, viewer, stubs.NewPostStub().Get().ID.Hex())

		Expect(err).To(MatchError(services.ErrNotFound))
	})

	It("fails with invalid input for a malformed id", func() {
		_, err := w.likeService.ToggleLike(w.ctx, viewer, "not-an-object-id")

		Expect(err).To(MatchError(services.ErrInvalidInput))
	})
})
