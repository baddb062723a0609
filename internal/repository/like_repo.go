package repository

import (
	"LikeRelay/internal/model"
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLikeExists (post_id, user_id) 已被另一行占用
var ErrLikeExists = errors.New("like already exists for post and user")

type LikeRepo interface {
	// Transaction fn 内只能使用 tx，不能再使用外层 repo
	Transaction(ctx context.Context, fn func(tx LikeRepo) error) error

	FindLikeByEventID(ctx context.Context, eventID string) (*model.Like, error)
	FindLikeByPostAndUser(ctx context.Context, postID, userID uint64) (*model.Like, error)
	IsLiked(ctx context.Context, postID, userID uint64) (bool, error)
	CreateLike(ctx context.Context, like *model.Like) error
	UpdateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, postID, userID uint64) (int64, error)

	EnsurePostExists(ctx context.Context, postID uint64) error
	GetLikeCount(ctx context.Context, postID uint64) (int64, error)
	RefreshPostLikeCount(ctx context.Context, postID uint64) (int64, error)
	GetPostLikeCount(ctx context.Context, postID uint64) (int64, error)
	ListPostIDs(ctx context.Context, afterID uint64, limit int) ([]uint64, error)
}

type LikeRepoImpl struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) LikeRepo {
	return &LikeRepoImpl{db}
}

func (s *LikeRepoImpl) Transaction(ctx context.Context, fn func(tx LikeRepo) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LikeRepoImpl{db: tx})
	})
}

// FindLikeByEventID 不存在时返回 nil, nil
func (s *LikeRepoImpl) FindLikeByEventID(ctx context.Context, eventID string) (*model.Like, error) {
	var like model.Like
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// FindLikeByPostAndUser 不存在时返回 nil, nil
func (s *LikeRepoImpl) FindLikeByPostAndUser(ctx context.Context, postID, userID uint64) (*model.Like, error) {
	var like model.Like
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// IsLiked FAILED 行不算点赞关系
func (s *LikeRepoImpl) IsLiked(ctx context.Context, postID, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ? AND user_id = ? AND status <> ?", postID, userID, model.LikeStatusFailed).
		Count(&count).Error
	return count > 0, err
}

// CreateLike 先清理同一 (post_id, user_id) 的 FAILED 行再插入
// 该组合已被其他行占用时返回 ErrLikeExists
func (s *LikeRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	if like.Status == "" {
		like.Status = model.LikeStatusPending
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND user_id = ? AND status = ?", like.PostID, like.UserID, model.LikeStatusFailed).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Create(like).Error
	})
	if isDuplicateError(err) {
		return ErrLikeExists
	}
	return err
}

// UpdateLike 持久化状态机的结果
func (s *LikeRepoImpl) UpdateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Model(&model.Like{}).
		Where("event_id = ?", like.EventID).
		Updates(map[string]interface{}{
			"status":      like.Status,
			"retry_count": like.RetryCount,
		}).Error
}

func (s *LikeRepoImpl) DeleteLike(ctx context.Context, postID, userID uint64) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.Like{})
	return res.RowsAffected, res.Error
}

// EnsurePostExists 帖子不存在时以 like_count=0 创建
func (s *LikeRepoImpl) EnsurePostExists(ctx context.Context, postID uint64) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Post{ID: postID}).Error
}

// GetLikeCount likes 表中 SUCCESS 行数，即权威点赞数
func (s *LikeRepoImpl) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ? AND status = ?", postID, model.LikeStatusSuccess).
		Count(&count).Error
	return count, err
}

// RefreshPostLikeCount 单条语句重算 posts.like_count，避免读-改-写竞争
func (s *LikeRepoImpl) RefreshPostLikeCount(ctx context.Context, postID uint64) (int64, error) {
	db := s.db.WithContext(ctx)
	err := db.Exec(
		"UPDATE posts SET like_count = (SELECT COUNT(*) FROM likes WHERE likes.post_id = ? AND likes.status = ?) WHERE id = ?",
		postID, model.LikeStatusSuccess, postID,
	).Error
	if err != nil {
		return 0, err
	}
	var post model.Post
	if err = db.Select("like_count").Where("id = ?", postID).Take(&post).Error; err != nil {
		return 0, err
	}
	return post.LikeCount, nil
}

// GetPostLikeCount posts.like_count 的持久化值
func (s *LikeRepoImpl) GetPostLikeCount(ctx context.Context, postID uint64) (int64, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Select("like_count").Where("id = ?", postID).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return post.LikeCount, err
}

// ListPostIDs 按 id 游标分页
func (s *LikeRepoImpl) ListPostIDs(ctx context.Context, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
