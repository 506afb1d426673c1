package server

import (
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// RequestIDHeader 请求 ID 的请求头和响应头
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// requestIDFilter 透传或生成请求 ID，写入响应头和请求上下文
func requestIDFilter(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID 返回上下文中的请求 ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDValuer 日志字段，输出当前请求 ID
func RequestIDValuer() log.Valuer {
	return func(ctx context.Context) interface{} {
		return RequestID(ctx)
	}
}

// corsFilter 允许任意来源，D365 表单通过 iframe 和 X++ 调用
func corsFilter(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == nethttp.MethodOptions {
			w.WriteHeader(nethttp.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
