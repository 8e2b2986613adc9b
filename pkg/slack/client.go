// Package slack 封装Slack chat.postMessage接口，支持线程回复和限流
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"costwatch/pkg/config"
)

const defaultBaseURL = "https://slack.com/api"

// Client Slack客户端
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient 创建Slack客户端
func NewClient(cfg *config.SlackConfig) *Client {
	messagesPerSec := cfg.MessagesPerSec
	if messagesPerSec <= 0 {
		messagesPerSec = 1.0
	}

	return &Client{
		token:   cfg.BotToken,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(messagesPerSec), 1),
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Second,
	}
}

// postMessageRequest chat.postMessage请求体
type postMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// postMessageResponse chat.postMessage响应体
type postMessageResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

// PostMessage 发送消息并返回消息时间戳，threadTS非空时作为线程回复发送。
// 瞬时错误按指数退避重试，永久错误立即返回。
func (c *Client) PostMessage(ctx context.Context, channel, text, threadTS string) (string, error) {
	var lastError error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			// 被限流时优先采用服务端指定的Retry-After
			var apiErr *APIError
			if errors.As(lastError, &apiErr) && apiErr.RetryAfter > 0 {
				delay = apiErr.RetryAfter
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		ts, err := c.doPostMessage(ctx, channel, text, threadTS)
		if err == nil {
			return ts, nil
		}
		if IsPermanent(err) {
			return "", err
		}
		lastError = err
	}

	return "", fmt.Errorf("slack发送失败，已重试%d次: %w", c.maxRetries, lastError)
}

// doPostMessage 执行单次发送
func (c *Client) doPostMessage(ctx context.Context, channel, text, threadTS string) (string, error) {
	if c.token == "" {
		return "", newAPIError("invalid_auth", 0)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(postMessageRequest{
		Channel:  channel,
		Text:     text,
		ThreadTS: threadTS,
	})
	if err != nil {
		return "", fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat.postMessage", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	// 429和5xx视为瞬时错误，429额外携带Retry-After
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		apiErr := &APIError{Code: "http_error", StatusCode: resp.StatusCode, Transient: true}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return "", apiErr
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Code: "http_error", StatusCode: resp.StatusCode, Transient: false}
	}

	var apiResp postMessageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if !apiResp.OK {
		return "", newAPIError(apiResp.Error, resp.StatusCode)
	}

	return apiResp.TS, nil
}
