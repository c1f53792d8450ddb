package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/inflight"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/fakes"
)

func TestServices(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Services Suite")
}

// world wires every service to in-memory repositories
type world struct {
	ctx   context.Context
	clock time.Time

	users         *fakes.Users
	posts         *fakes.Posts
	follows       *fakes.Follows
	likes         *fakes.Likes
	comments      *fakes.Comments
	notifications *fakes.Notifications
	verifications *fakes.Verifications
	publisher     *fakes.Publisher
	sessions      *fakes.Invalidator
	guard         *inflight.MemoryGuard

	notifier     *services.NotificationService
	graph        *services.GraphService
	feed         *services.FeedService
	likeService  *services.LikeService
	postService  *services.PostService
	verification *services.VerificationService
	profiles     *services.ProfileService
	reconciler   *services.Reconciler
}

func newWorld() *world {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := &world{
		ctx:           context.Background(),
		clock:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		users:         fakes.NewUsers(),
		posts:         fakes.NewPosts(),
		likes:         fakes.NewLikes(),
		comments:      fakes.NewComments(),
		notifications: fakes.NewNotifications(),
		verifications: fakes.NewVerifications(),
		publisher:     &fakes.Publisher{},
		sessions:      &fakes.Invalidator{},
		guard:         inflight.NewMemoryGuard(10 * time.Second),
	}
	w.follows = fakes.NewFollows(w.users)

	w.notifier = services.NewNotificationService(w.notifications, logger)
	w.graph = services.NewGraphService(w.follows, w.users, w.notifier, w.publisher, logger)
	w.feed = services.NewFeedService(w.posts, w.follows, w.likes)
	w.likeService = services.NewLikeService(w.likes, w.posts, w.users, w.guard, w.notifier, w.publisher, logger)
	w.postService = services.NewPostService(w.posts, w.users, w.comments, w.graph, w.notifier, w.publisher, logger, services.PostConfig{
		Now: func() time.Time { return w.clock },
	})
	w.verification = services.NewVerificationService(w.verifications, w.users, w.sessions, w.publisher, logger)
	w.profiles = services.NewProfileService(w.users, w.sessions)
	w.reconciler = services.NewReconciler(w.users, w.posts, w.follows, w.likes, w.comments, logger)
	return w
}

func (w *world) advance(d time.Duration) {
	w.clock = w.clock.Add(d)
}

// reload returns the stored copy of a user
func (w *world) reload(u *models.User) *models.User {
	fresh, err := w.users.GetUserByID(w.ctx, u.ID)
	Expect(err).NotTo(HaveOccurred())
	return fresh
}

func (w *world) reloadPost(p *models.Post) *models.Post {
	fresh, err := w.posts.GetPostByID(w.ctx, p.ID.Hex())
	Expect(err).NotTo(HaveOccurred())
	return fresh
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.Hex()
	}
	return ids
}
