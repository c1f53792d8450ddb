package services_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("PostService", func() {
	var (
		w      *world
		author *models.User
	)

	BeforeEach(func() {
		w = newWorld()
		author = stubs.NewUserStub().Get()
		w.users.Seed(author)
	})

	Describe("CreatePost", func() {
		It("stores the post with zeroed counters and bumps the author's post count", func() {
			// ACT
			post, err := w.postService.CreatePost(w.ctx, author, "hello world", "")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(post.Content).To(Equal("hello world"))
			Expect(post.LikesCount).To(BeZero())
			Expect(post.CommentsCount).To(BeZero())
			Expect(post.IsPublic).To(BeTrue())
			Expect(post.AuthorHandle).To(Equal(author.Handle))
			Expect(post.CreatedAt).To(BeTemporally("==", w.clock))
			Expect(w.reload(author).PostsCount).To(Equal(int64(1)))
			Expect(w.publisher.Types()).To(Equal([]string{events.PostCreated}))
		})

		It("rejects a second post within the rate window", func() {
			_, err := w.postService.CreatePost(w.ctx, author, "first", "")
			Expect(err).NotTo(HaveOccurred())

			w.advance(59 * time.Second)
			_, err = w.postService.CreatePost(w.ctx, author, "second", "")

			Expect(err).To(MatchError(services.ErrPostingTooFast))
			Expect(w.reload(author).PostsCount).To(Equal(int64(1)))
		})

		It("accepts a post once the window has passed", func() {
			_, err := w.postService.CreatePost(w.ctx, author, "first", "")
			Expect(err).NotTo(HaveOccurred())

			w.advance(61 * time.Second)
			_, err = w.postService.CreatePost(w.ctx, author, "second", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(w.reload(author).PostsCount).To(Equal(int64(2)))
		})

		It("rate limits each author independently", func() {
			other := stubs.NewUserStub().Get()
			w.users.Seed(other)

			_, err := w.postService.CreatePost(w.ctx, author, "mine", "")
			Expect(err).NotTo(HaveOccurred())
			_, err = w.postService.CreatePost(w.ctx, other, "theirs", "")
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects invalid content",
			func(content string) {
				_, err := w.postService.CreatePost(w.ctx, author, content, "")
				Expect(err).To(MatchError(services.ErrInvalidInput))
			},
			Entry("empty", ""),
			Entry("whitespace only", "   \n\t"),
			Entry("too long", strings.Repeat("a", models.MaxPostLength+1)),
		)

		It("counts length in characters, not bytes", func() {
			_, err := w.postService.CreatePost(w.ctx, author, strings.Repeat("é", models.MaxPostLength), "")

			Expect(err).NotTo(HaveOccurred())
		})

		It("creates private posts for private authors", func() {
			private := stubs.NewUserStub().Private().Get()
			w.users.Seed(private)

			post, err := w.postService.CreatePost(w.ctx, private, "just for followers", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(post.IsPublic).To(BeFalse())
		})

		It("notifies mentioned users once each", func() {
			friend := stubs.NewUserStub().WithHandle("friend_one").Get()
			w.users.Seed(friend)

			_, err := w.postService.CreatePost(w.ctx, author, "hey @friend_one and @Friend_One, also @nobody_here", "")

			Expect(err).NotTo(HaveOccurred())
			notes := w.notifications.For(friend.ID)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Type).To(Equal(models.NotificationMention))
		})
	})

	Describe("GetPost", func() {
		var (
			private *models.User
			hidden  *models.Post
			viewer  *models.User
		)

		BeforeEach(func() {
			private = stubs.NewUserStub().Private().Get()
			viewer = stubs.NewUserStub().Get()
			w.users.Seed(private, viewer)
			hidden = stubs.NewPostStub().By(private).Get()
			w.posts.Seed(hidden)
		})

		It("hides a private post from non-followers", func() {
			_, err := w.postService.GetPost(w.ctx, viewer, hidden.ID.Hex())

			Expect(err).To(MatchError(services.ErrForbidden))
		})

		It("shows a private post to followers", func() {
			Expect(w.graph.Follow(w.ctx, viewer, private.ID)).To(Succeed())

			post, err := w.postService.GetPost(w.ctx, viewer, hidden.ID.Hex())

			Expect(err).NotTo(HaveOccurred())
			Expect(post.ID).To(Equal(hidden.ID))
		})
	})

	Describe("DeletePost", func() {
		It("only lets the author delete", func() {
			post, err := w.postService.CreatePost(w.ctx, author, "mine", "")
			Expect(err).NotTo(HaveOccurred())
			stranger := stubs.NewUserStub().Get()
			w.users.Seed(stranger)

			Expect(w.postService.DeletePost(w.ctx, stranger, post.ID.Hex())).To(MatchError(services.ErrForbidden))
			Expect(w.postService.DeletePost(w.ctx, author, post.ID.Hex())).To(Succeed())

			_, err = w.posts.GetPostByID(w.ctx, post.ID.Hex())
			Expect(err).To(HaveOccurred())
			Expect(w.reload(author).PostsCount).To(BeZero())
		})
	})

	Describe("Comment", func() {
		It("stores the comment, bumps the counter and notifies the author", func() {
			post, err := w.postService.CreatePost(w.ctx, author, "discuss", "")
			Expect(err).NotTo(HaveOccurred())
			commenter := stubs.NewUserStub().Get()
			w.users.Seed(commenter)

			comment, err := w.postService.Comment(w.ctx, commenter, post.ID.Hex(), " nice post ")

			Expect(err).NotTo(HaveOccurred())
			Expect(comment.Content).To(Equal("nice post"))
			Expect(w.reloadPost(post).CommentsCount).To(Equal(int64(1)))

			comments, err := w.postService.Comments(w.ctx, commenter, post.ID.Hex())
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(1))

			notes := w.notifications.For(author.ID)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Type).To(Equal(models.NotificationComment))
			Expect(notes[0].PostSnippet).To(Equal("discuss"))
		})
	})

	Describe("AuthorPosts", func() {
		It("pages through an author's posts newest first", func() {
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 5; i++ {
				w.posts.Seed(stubs.NewPostStub().By(author).At(base.Add(time.Duration(i) * time.Hour)).Get())
			}

			page1, err := w.postService.AuthorPosts(w.ctx, author, author, 1, 3)
			Expect(err).NotTo(HaveOccurred())
			page2, err := w.postService.AuthorPosts(w.ctx, author, author, 2, 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(page1).To(HaveLen(3))
			Expect(page2).To(HaveLen(2))
			Expect(page1[0].CreatedAt).To(BeTemporally("==", base.Add(4*time.Hour)))
		})
	})
})
