package server

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
)

// Error 房间服务的错误；Message 直接返回给客户端
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同类错误视为相等，便于 errors.Is(err, ErrRoomNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Status 对应的 HTTP 状态码
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrRoomNotFound = &Error{Kind: KindNotFound, Message: "Room not found"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "invalid request"}

	// errNoRoom 存储层：键不存在
	errNoRoom = errors.New("no such room")
)

func validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// classify 任意错误转为 (*Error)；未知错误按内部错误处理
func classify(err error, fallback string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: fallback, Err: err}
}
