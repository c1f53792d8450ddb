package services

import (
	"context"
	"log/slog"

	"github.com/anonto42/circle/backend/internal/repositories"
)

// ReconcileReport summarizes one reconciliation pass
type ReconcileReport struct {
	UsersScanned int `json:"users_scanned"`
	UsersFixed   int `json:"users_fixed"`
	PostsScanned int `json:"posts_scanned"`
	PostsFixed   int `json:"posts_fixed"`
}

// Reconciler recomputes denormalized counters from the edges and items they summarize
type Reconciler struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	follows  repositories.FollowRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	logger   *slog.Logger
}

func NewReconciler(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	follows repositories.FollowRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{users: users, posts: posts, follows: follows, likes: likes, comments: comments, logger: logger}
}

// Reconcile rewrites every counter that differs from its source of truth
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	likeCounts, err := r.likes.GetLikeCounts(ctx)
	if err != nil {
		return nil, storageErr(err, "count likes")
	}
	commentCounts, err := r.comments.GetCommentCounts(ctx)
	if err != nil {
		return nil, storageErr(err, "count comments")
	}

	posts, err := r.posts.GetAllCounters(ctx)
	if err != nil {
		return nil, storageErr(err, "load posts")
	}

	postsByAuthor := make(map[uint]int64)
	likesByAuthor := make(map[uint]int64)
	for _, p := range posts {
		report.PostsScanned++
		id := p.ID.Hex()
		likes, comments := likeCounts[id], commentCounts[id]

		postsByAuthor[p.AuthorID]++
		likesByAuthor[p.AuthorID] += likes

		if p.LikesCount == likes && p.CommentsCount == comments {
			continue
		}
		if err := r.posts.SetCounters(ctx, p.ID, likes, comments); err != nil {
			return report, storageErr(err, "fix post "+id)
		}
		r.logger.Info("post counters fixed", "post_id", id,
			"likes_before", p.LikesCount, "likes_after", likes,
			"comments_before", p.CommentsCount, "comments_after", comments)
		report.PostsFixed++
	}

	users, err := r.users.GetUsers(ctx)
	if err != nil {
		return report, storageErr(err, "load users")
	}

	for _, u := range users {
		report.UsersScanned++

		followers, err := r.follows.GetFollowersCount(ctx, u.ID)
		if err != nil {
			return report, storageErr(err, "count followers")
		}
		following, err := r.follows.GetFollowingCount(ctx, u.ID)
		if err != nil {
			return report, storageErr(err, "count following")
		}

		want := repositories.UserCounters{
			Followers: followers,
			Following: following,
			Posts:     postsByAuthor[u.ID],
			Likes:     likesByAuthor[u.ID],
		}
		have := repositories.UserCounters{
			Followers: u.FollowersCount,
			Following: u.FollowingCount,
			Posts:     u.PostsCount,
			Likes:     u.LikesCount,
		}
		if want == have {
			continue
		}
		if err := r.users.SetCounters(ctx, u.ID, want); err != nil {
			return report, storageErr(err, "fix user counters")
		}
		r.logger.Info("user counters fixed", "user_id", u.ID, "before", have, "after", want)
		report.UsersFixed++
	}

	return report, nil
}
