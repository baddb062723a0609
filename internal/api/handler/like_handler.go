package handler

import (
	"LikeRelay/internal/api/dto"
	"LikeRelay/internal/pkg/response"
	"LikeRelay/internal/service"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeSvc service.LikeService
	syncSvc service.LikeSyncService
}

func NewLikeHandler(likeSvc service.LikeService, syncSvc service.LikeSyncService) *LikeHandler {
	return &LikeHandler{
		likeSvc: likeSvc,
		syncSvc: syncSvc,
	}
}

// Toggle 点赞/取消点赞
func (s *LikeHandler) Toggle(c *gin.Context) {
	var req dto.LikeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.likeSvc.Toggle(c.Request.Context(), req.PostID, req.UserID)
	if err != nil {
		if !errors.Is(err, service.ErrLikeProcessFailed) {
			err = service.ErrLikeProcessFailed
		}
		response.Error(c, err)
		return
	}

	message := "Post liked"
	if !res.Liked {
		message = "Post unliked"
	}
	response.Success(c, dto.LikeResp{
		Success:   true,
		Message:   message,
		LikeCount: res.LikeCount,
		Liked:     res.Liked,
	})
}

// GetLikeCount 读取点赞数，缓存与 DB 都不可用时返回 0
func (s *LikeHandler) GetLikeCount(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	response.Success(c, dto.LikeCountResp{
		Count:  s.likeSvc.GetLikeCount(c.Request.Context(), postID),
		PostID: postID,
	})
}

// SyncPost 手动对账单个帖子
func (s *LikeHandler) SyncPost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	count, err := s.syncSvc.SyncPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, service.ErrSyncFailed)
		return
	}
	response.Success(c, dto.LikeCountResp{Count: count, PostID: postID})
}

// SyncAll 手动触发一次全量对账
func (s *LikeHandler) SyncAll(c *gin.Context) {
	summary, err := s.syncSvc.SyncAll(c.Request.Context())
	if err != nil {
		response.Error(c, service.ErrSyncFailed)
		return
	}
	response.Success(c, dto.SyncResp{
		Synced:     summary.Synced,
		Failed:     summary.Failed,
		DurationMs: summary.Duration.Milliseconds(),
	})
}

func parsePostID(c *gin.Context) (uint64, bool) {
	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return postID, true
}
