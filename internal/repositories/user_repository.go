package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/circle/backend/internal/models"
	"gorm.io/gorm"
)

// CounterField names a denormalized counter column on users
type CounterField string

const (
	FollowersCount CounterField = "followers_count"
	FollowingCount CounterField = "following_count"
	PostsCount     CounterField = "posts_count"
	LikesCount     CounterField = "likes_count"
)

// UserCounters holds recomputed values for every denormalized counter of a user
type UserCounters struct {
	Followers int64
	Following int64
	Posts     int64
	Likes     int64
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByHandles(ctx context.Context, handles []string) ([]models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
	AdjustCounter(ctx context.Context, id uint, field CounterField, delta int64) error
	SetCounters(ctx context.Context, id uint, counters UserCounters) error
	SetVerified(ctx context.Context, id uint, verified bool) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.Handle = strings.ToLower(user.Handle)
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByHandle retrieves a user by handle; handles are stored lowercase
func (r *PostgresUserRepository) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("handle = ?", strings.ToLower(handle)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUsersByHandles(ctx context.Context, handles []string) ([]models.User, error) {
	users := []models.User{}
	if len(handles) == 0 {
		return users, nil
	}
	lowered := make([]string, len(handles))
	for i, h := range handles {
		lowered[i] = strings.ToLower(h)
	}
	err := r.db.WithContext(ctx).Where("handle IN ?", lowered).Find(&users).Error
	return users, err
}

// GetUsers retrieves all users from PostgreSQL
func (r *PostgresUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields writes only the given columns so concurrent counter updates are not overwritten
func (r *PostgresUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers searches for users by handle or display name (case-insensitive)
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	users := []models.User{}
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(handle) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern).
		Order("followers_count DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// AdjustCounter increments (or decrements) one denormalized counter in place
func (r *PostgresUserRepository) AdjustCounter(ctx context.Context, id uint, field CounterField, delta int64) error {
	column := string(field)
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) SetCounters(ctx context.Context, id uint, c UserCounters) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		string(FollowersCount): c.Followers,
		string(FollowingCount): c.Following,
		string(PostsCount):     c.Posts,
		string(LikesCount):     c.Likes,
	}).Error
}

// SetVerified sets the verification flag; re-applying the same value is harmless
func (r *PostgresUserRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("is_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
