package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	httpClient, ok := NewHTTPClient().(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, httpClient.client.Timeout)

	httpClient, ok = NewHTTPClientWithTimeout(5 * time.Second).(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, httpClient.client.Timeout)
}

func TestHTTPClient_DoHTTPRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		requestParam *RequestParam
		handler      http.HandlerFunc
		wantErrMsg   string
	}{
		{
			name:         "GET 请求",
			requestParam: &RequestParam{Method: "GET"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				_, _ = w.Write([]byte(`{"message": "success"}`))
			},
		},
		{
			name: "POST JSON body",
			requestParam: &RequestParam{
				Method: "POST",
				Body:   map[string]interface{}{"lower": "0,0,200"},
				Header: map[string]string{"Content-Type": "application/json"},
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var data map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
				assert.Equal(t, "0,0,200", data["lower"])
			},
		},
		{
			name:         "POST io.Reader body",
			requestParam: &RequestParam{Method: "POST", Body: strings.NewReader("raw")},
			handler: func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Equal(t, "raw", string(body))
			},
		},
		{
			name:         "服务器返回错误状态码",
			requestParam: &RequestParam{Method: "GET"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("no such image"))
			},
			wantErrMsg: "HTTP request failed with status 404: no such image",
		},
		{
			name:         "请求超时",
			requestParam: &RequestParam{Method: "GET", Timeout: 50 * time.Millisecond},
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			wantErrMsg: "context deadline exceeded",
		},
		{
			name:       "请求参数为nil",
			wantErrMsg: "request param is nil",
		},
		{
			name:         "无效的URL",
			requestParam: &RequestParam{Method: "GET", RequestURI: "://invalid-url"},
			wantErrMsg:   "missing protocol scheme",
		},
		{
			name:         "JSON序列化失败",
			requestParam: &RequestParam{Method: "POST", Body: make(chan int)},
			wantErrMsg:   "json: unsupported type: chan int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := tt.handler
			if handler == nil {
				handler = func(w http.ResponseWriter, r *http.Request) {}
			}
			server := httptest.NewServer(handler)
			defer server.Close()

			if tt.requestParam != nil && tt.requestParam.RequestURI == "" {
				tt.requestParam.RequestURI = server.URL
			}

			err := NewHTTPClient().DoHTTPRequest(context.Background(), tt.requestParam)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHTTPClient_DoHTTPRequest_RawResponse(t *testing.T) {
	t.Parallel()

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	var got []byte
	err := NewHTTPClient().DoHTTPRequest(context.Background(), &RequestParam{
		Method:     "GET",
		RequestURI: server.URL,
		Response:   &got,
	})
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestHTTPClient_DoHTTPRequest_JSONResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "abc", "coverage": 0.25}`))
	}))
	defer server.Close()

	var resp struct {
		ID       string  `json:"id"`
		Coverage float64 `json:"coverage"`
	}
	err := NewHTTPClient().DoHTTPRequest(context.Background(), &RequestParam{
		RequestURI: server.URL,
		Response:   &resp,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, 0.25, resp.Coverage)
}

func TestHTTPClient_DoHTTPRequest_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := NewHTTPClient().DoHTTPRequest(ctx, &RequestParam{RequestURI: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestHTTPClient_DoHTTPRequest_ErrorStatusCodes(t *testing.T) {
	t.Parallel()

	for _, statusCode := range []int{400, 403, 500, 502} {
		t.Run(http.StatusText(statusCode), func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(statusCode)
			}))
			defer server.Close()

			err := NewHTTPClient().DoHTTPRequest(context.Background(), &RequestParam{RequestURI: server.URL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "HTTP request failed with status")
		})
	}
}
