package model

// Post 帖子点赞聚合，like_count 由 likes 表 SUCCESS 行数推导
type Post struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	LikeCount int64  `gorm:"not null;default:0" json:"like_count"`
}

func (Post) TableName() string {
	return "posts"
}
