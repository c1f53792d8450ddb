package fakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

type Comments struct {
	mu     sync.Mutex
	rows   []models.Comment
	nextID uint
}

func NewComments() *Comments {
	return &Comments{}
}

func (c *Comments) CreateComment(_ context.Context, comment *models.Comment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	comment.ID = c.nextID
	c.rows = append(c.rows, *comment)
	return nil
}

func (c *Comments) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	comments := []models.Comment{}
	for _, row := range c.rows {
		if row.PostID == postID {
			comments = append(comments, row)
		}
	}
	return comments, nil
}

func (c *Comments) GetCommentCounts(context.Context) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int64)
	for _, row := range c.rows {
		counts[row.PostID]++
	}
	return counts, nil
}

type Notifications struct {
	mu     sync.Mutex
	rows   []models.Notification
	nextID uint

	// CreateErr, when set, fails every insert
	CreateErr error
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (n *Notifications) CreateNotification(_ context.Context, notification *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.CreateErr != nil {
		return n.CreateErr
	}
	n.nextID++
	notification.ID = n.nextID
	n.rows = append(n.rows, *notification)
	return nil
}

// For returns a recipient's notifications, newest first
func (n *Notifications) For(recipientID uint) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []models.Notification{}
	for _, row := range n.rows {
		if row.RecipientID == recipientID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (n *Notifications) GetByRecipientID(_ context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	all := n.For(recipientID)
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (n *Notifications) GetGrouped(_ context.Context, recipientID uint, now time.Time) (*models.GroupedNotifications, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	week := today.AddDate(0, 0, -7)

	grouped := &models.GroupedNotifications{}
	for _, row := range n.For(recipientID) {
		switch {
		case !row.CreatedAt.Before(today):
			grouped.Today = append(grouped.Today, row)
		case !row.CreatedAt.Before(yesterday):
			grouped.Yesterday = append(grouped.Yesterday, row)
		case !row.CreatedAt.Before(week):
			grouped.ThisWeek = append(grouped.ThisWeek, row)
		default:
			grouped.Older = append(grouped.Older, row)
		}
	}
	return grouped, nil
}

func (n *Notifications) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, row := range n.For(recipientID) {
		if !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (n *Notifications) MarkAsRead(_ context.Context, recipientID, notificationID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.rows {
		if n.rows[i].ID == notificationID && n.rows[i].RecipientID == recipientID {
			n.rows[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (n *Notifications) MarkAllAsRead(_ context.Context, recipientID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.rows {
		if n.rows[i].RecipientID == recipientID {
			n.rows[i].IsRead = true
		}
	}
	return nil
}

type Verifications struct {
	mu     sync.Mutex
	rows   map[uint]models.VerificationRequest
	nextID uint
}

func NewVerifications() *Verifications {
	return &Verifications{rows: make(map[uint]models.VerificationRequest)}
}

func (v *Verifications) CreateRequest(_ context.Context, req *models.VerificationRequest) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	req.ID = v.nextID
	v.rows[req.ID] = *req
	return nil
}

func (v *Verifications) GetRequestByID(_ context.Context, id uint) (*models.VerificationRequest, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	req, ok := v.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &req, nil
}

func (v *Verifications) GetPendingByUserID(_ context.Context, userID uint) (*models.VerificationRequest, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, req := range v.rows {
		if req.UserID == userID && req.Status == models.VerificationPending {
			found := req
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (v *Verifications) ListByStatus(_ context.Context, status string) ([]models.VerificationRequest, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	reqs := []models.VerificationRequest{}
	for _, req := range v.rows {
		if req.Status == status {
			reqs = append(reqs, req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (v *Verifications) UpdateDecision(_ context.Context, id uint, status string, reviewerID uint, reviewedAt time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	req, ok := v.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &reviewedAt
	v.rows[id] = req
	return nil
}
