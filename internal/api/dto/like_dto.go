package dto

// LikeReq 点赞切换请求
type LikeReq struct {
	PostID uint64 `json:"post_id" binding:"required,gt=0"`
	UserID uint64 `json:"user_id" binding:"required,gt=0"`
}

// LikeResp 切换结果，likeCount 为缓存中的即时计数
type LikeResp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LikeCount int64  `json:"likeCount"`
	Liked     bool   `json:"liked"`
}

type LikeCountResp struct {
	Count  int64  `json:"count"`
	PostID uint64 `json:"post_id"`
}

// SyncResp 全量对账结果
type SyncResp struct {
	Synced     int   `json:"synced"`
	Failed     int   `json:"failed"`
	DurationMs int64 `json:"duration_ms"`
}

// ErrorResp 统一失败返回
type ErrorResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
