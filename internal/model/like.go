package model

import (
	"time"
)

// LikeStatus likes.status 的取值
type LikeStatus string

const (
	LikeStatusPending  LikeStatus = "PENDING"
	LikeStatusRetrying LikeStatus = "RETRYING"
	LikeStatusSuccess  LikeStatus = "SUCCESS"
	LikeStatusFailed   LikeStatus = "FAILED"
)

// LikeStatusEvent 驱动 LikeStatus 迁移的事件
type LikeStatusEvent string

const (
	LikeEventSetRetrying LikeStatusEvent = "SET_RETRYING"
	LikeEventSetSuccess  LikeStatusEvent = "SET_SUCCESS"
	LikeEventSetFailed   LikeStatusEvent = "SET_FAILED"
)

// Like 同一行既是事件处理状态，也是 (post_id, user_id) 的点赞关系标记
// status 为 FAILED 的行不算作“已点赞”
type Like struct {
	EventID    string     `gorm:"primaryKey;type:varchar(36)" json:"eventId"`
	PostID     uint64     `gorm:"not null;index:idx_likes_post_id;uniqueIndex:uk_likes_post_user,priority:1" json:"postId"`
	UserID     uint64     `gorm:"not null;index:idx_likes_user_id;uniqueIndex:uk_likes_post_user,priority:2" json:"userId"`
	Status     LikeStatus `gorm:"type:varchar(16);not null;default:PENDING" json:"status"`
	RetryCount int        `gorm:"not null;default:0" json:"retryCount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}
