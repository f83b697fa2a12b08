package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

//go:generate mockgen -destination=mocks/http.go -package=mocks . IClient
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	// Body 支持 nil、io.Reader、[]byte，其他类型按 JSON 序列化
	Body interface{}
	// Response 为 *[]byte 时保存原始响应体，其他非 nil 值按 JSON 反序列化
	Response interface{}

	Timeout time.Duration
}

type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient() IClient {
	return NewHTTPClientWithTimeout(defaultTimeout)
}

func NewHTTPClientWithTimeout(timeout time.Duration) IClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error {
	if requestParam == nil {
		return errors.New("request param is nil")
	}

	if requestParam.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestParam.Timeout)
		defer cancel()
	}

	body, err := encodeBody(requestParam.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	method := requestParam.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, requestParam.RequestURI, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	for k, v := range requestParam.Header {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, string(data))
	}

	slog.Debug("http request done", "method", method, "uri", requestParam.RequestURI, "status", resp.StatusCode, "bytes", len(data))

	switch out := requestParam.Response.(type) {
	case nil:
		return nil
	case *[]byte:
		*out = data
		return nil
	default:
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func encodeBody(body interface{}) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return bytes.NewReader([]byte(b)), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}
