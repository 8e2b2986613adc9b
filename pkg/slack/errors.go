package slack

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// APIError Slack API返回的业务错误
type APIError struct {
	Code       string        // Slack错误码，如 invalid_auth
	StatusCode int           // HTTP状态码
	Transient  bool          // 是否可重试
	RetryAfter time.Duration // 429响应携带的Retry-After，0表示未指定
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack api error: %s (http %d)", e.Code, e.StatusCode)
}

// permanentCodes 不可重试的Slack错误码
var permanentCodes = map[string]bool{
	"invalid_auth":      true,
	"account_inactive":  true,
	"token_revoked":     true,
	"token_expired":     true,
	"channel_not_found": true,
	"not_in_channel":    true,
	"is_archived":       true,
	"msg_too_long":      true,
	"no_text":           true,
}

// newAPIError 根据错误码和状态码分类错误
func newAPIError(code string, statusCode int) *APIError {
	transient := true
	if permanentCodes[code] {
		transient = false
	}
	return &APIError{Code: code, StatusCode: statusCode, Transient: transient}
}

// IsTransient 判断错误是否值得重试：网络错误、超时、限流和5xx都算瞬时错误
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// 其他未知错误默认可重试一次也无妨
	return err != nil
}

// IsPermanent 判断错误是否不可重试
func IsPermanent(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Transient
	}
	return false
}
