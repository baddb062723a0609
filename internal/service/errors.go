package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrLikeProcessFailed = errors.New("failed to process like")
	ErrSyncFailed        = errors.New("同步失败")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrLikeProcessFailed: ServiceUnavailable,
	ErrSyncFailed:        InternalServerError,
	UnExpectedError:      InternalServerError,
}
