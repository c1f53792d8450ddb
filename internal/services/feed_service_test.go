package services_test

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("FeedService", func() {
	var (
		w      *world
		viewer *models.User
	)

	BeforeEach(func() {
		w = newWorld()
		viewer = stubs.NewUserStub().Get()
		w.users.Seed(viewer)
	})

	Context("when the viewer follows nobody", func() {
		It("returns the ten most-liked public posts", func() {
			// ARRANGE
			author := stubs.NewUserStub().Get()
			w.users.Seed(author)
			for i := 0; i < 15; i++ {
				w.posts.Seed(stubs.NewPostStub().By(author).WithLikes(int64(i * 3)).Get())
			}
			hidden := stubs.NewPostStub().By(author).NotPublic().WithLikes(1000).Get()
			w.posts.Seed(hidden)

			// ACT
			result, err := w.feed.HomeFeed(w.ctx, viewer.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Strategy).To(Equal(services.StrategyTrending))
			Expect(result.Posts).To(HaveLen(services.TrendingLimit))
			Expect(postIDs(result.Posts)).NotTo(ContainElement(hidden.ID.Hex()))
			Expect(sort.SliceIsSorted(result.Posts, func(i, j int) bool {
				return result.Posts[i].LikesCount > result.Posts[j].LikesCount
			})).To(BeTrue())
			Expect(result.Posts[0].LikesCount).To(Equal(int64(42)))
		})

		It("returns an empty feed when there are no posts", func() {
			result, err := w.feed.HomeFeed(w.ctx, viewer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Strategy).To(Equal(services.StrategyTrending))
			Expect(result.Posts).To(BeEmpty())
		})
	})

	Context("when the viewer follows between one and ten accounts", func() {
		var followees []*models.User

		BeforeEach(func() {
			followees = nil
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				u := stubs.NewUserStub().Get()
				w.users.Seed(u)
				Expect(w.graph.Follow(w.ctx, viewer, u.ID)).To(Succeed())
				followees = append(followees, u)
				for j := 0; j < 10; j++ {
					w.posts.Seed(stubs.NewPostStub().By(u).At(base.Add(time.Duration(i*10+j) * time.Minute)).Get())
				}
			}

			stranger := stubs.NewUserStub().Get()
			w.users.Seed(stranger)
			w.posts.Seed(stubs.NewPostStub().By(stranger).At(base.Add(24 * time.Hour)).WithLikes(99).Get())
		})

		It("returns at most twenty followee posts, newest first", func() {
			// ACT
			result, err := w.feed.HomeFeed(w.ctx, viewer.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Strategy).To(Equal(services.StrategyFollowing))
			Expect(result.Truncated).To(BeFalse())
			Expect(result.Posts).To(HaveLen(services.HomeFeedLimit))

			followeeIDs := map[uint]bool{}
			for _, f := range followees {
				followeeIDs[f.ID] = true
			}
			for _, p := range result.Posts {
				Expect(followeeIDs).To(HaveKey(p.AuthorID))
			}

			want := append([]models.Post(nil), result.Posts...)
			sort.SliceStable(want, func(i, j int) bool { return want[i].CreatedAt.After(want[j].CreatedAt) })
			Expect(cmp.Diff(postIDs(want), postIDs(result.Posts))).To(BeEmpty())
		})

		It("includes a private followee's posts", func() {
			private := stubs.NewUserStub().Private().Get()
			w.users.Seed(private)
			Expect(w.graph.Follow(w.ctx, viewer, private.ID)).To(Succeed())
			post := stubs.NewPostStub().By(private).At(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).Get()
			w.posts.Seed(post)

			result, err := w.feed.HomeFeed(w.ctx, viewer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Posts[0].ID).To(Equal(post.ID))
		})
	})

	Context("when the viewer follows more than ten accounts", func() {
		It("leaves out posts of followees beyond the first ten", func() {
			// ARRANGE
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			var eleventh *models.User
			for i := 0; i < 11; i++ {
				u := stubs.NewUserStub().Get()
				w.users.Seed(u)
				Expect(w.graph.Follow(w.ctx, viewer, u.ID)).To(Succeed())
				w.posts.Seed(stubs.NewPostStub().By(u).At(base.Add(time.Duration(i) * time.Hour)).Get())
				eleventh = u
			}

			// ACT
			result, err := w.feed.HomeFeed(w.ctx, viewer.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Truncated).To(BeTrue())
			Expect(result.Posts).To(HaveLen(10))
			for _, p := range result.Posts {
				Expect(p.AuthorID).NotTo(Equal(eleventh.ID))
			}
		})
	})

	Describe("Explore", func() {
		var author *models.User

		BeforeEach(func() {
			author = stubs.NewUserStub().WithHandle("gopher_fan").WithDisplayName("Rob Pike Fan").Get()
			w.users.Seed(author)
		})

		It("matches content, handle and display name case-insensitively", func() {
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			w.posts.Seed(
				stubs.NewPostStub().By(author).WithContent("Learning CHANNELS today").At(base).Get(),
				stubs.NewPostStub().By(author).WithContent("lunch").At(base.Add(time.Minute)).Get(),
			)

			byContent, err := w.feed.Explore(w.ctx, "channels")
			Expect(err).NotTo(HaveOccurred())
			Expect(byContent).To(HaveLen(1))

			byHandle, err := w.feed.Explore(w.ctx, "GOPHER")
			Expect(err).NotTo(HaveOccurred())
			Expect(byHandle).To(HaveLen(2))

			byName, err := w.feed.Explore(w.ctx, "pike")
			Expect(err).NotTo(HaveOccurred())
			Expect(byName).To(HaveLen(2))
		})

		It("only searches the twenty newest public posts", func() {
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			old := stubs.NewPostStub().WithContent("needle in the haystack").At(base).Get()
			w.posts.Seed(old)
			for i := 1; i <= services.ExploreWindow; i++ {
				w.posts.Seed(stubs.NewPostStub().WithContent(fmt.Sprintf("filler %d", i)).At(base.Add(time.Duration(i) * time.Minute)).Get())
			}

			matched, err := w.feed.Explore(w.ctx, "needle")

			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeEmpty())
		})

		It("returns the whole window for an empty query", func() {
			for i := 0; i < 5; i++ {
				w.posts.Seed(stubs.NewPostStub().Get())
			}
			w.posts.Seed(stubs.NewPostStub().NotPublic().Get())

			matched, err := w.feed.Explore(w.ctx, "  ")

			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(HaveLen(5))
		})
	})

	Describe("Enrich", func() {
		It("marks the posts the viewer liked", func() {
			liked := stubs.NewPostStub().Get()
			other := stubs.NewPostStub().Get()
			w.posts.Seed(liked, other)
			_, err := w.likeService.ToggleLike(w.ctx, viewer, liked.ID.Hex())
			Expect(err).NotTo(HaveOccurred())

			enriched, err := w.feed.Enrich(w.ctx, viewer.ID, []models.Post{*liked, *other})

			Expect(err).NotTo(HaveOccurred())
			Expect(enriched[0].IsLiked).To(BeTrue())
			Expect(enriched[1].IsLiked).To(BeFalse())
		})
	})
})
