package consts

const (
	// PostLikeCountKey post:{id}:like_count
	PostLikeCountKey = "post:%d:like_count"
)

const (
	LikeSyncLock = "lock:like:sync"
)
