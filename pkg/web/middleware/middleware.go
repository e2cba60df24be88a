package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"account-hub/pkg/common/config"
	apierr "account-hub/pkg/common/errors"
	"account-hub/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
	"golang.org/x/time/rate"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run ./cmd/web
*/

// RecoveryMiddleware 增强型异常捕获（带配置依赖版本）
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				msg := "internal server error"
				if !cfg.IsProd() { // 开发环境显示详细错误
					msg = fmt.Sprintf("%v", err)
				}
				ctx.AbortWithStatusJSON(http.StatusInternalServerError,
					model.NewAPIResponse(http.StatusInternalServerError, nil, msg))
			}
		}()
		ctx.Next(c)
	}
}

// ErrorHandlerMiddleware renders the last error pushed with c.Error as the
// response envelope. Handlers only push errors; this is the single place that
// turns them into status codes.
func ErrorHandlerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		ctx.Next(c)

		last := ctx.Errors.Last()
		if last == nil {
			return
		}

		apiErr := apierr.FromError(last.Err)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			hlog.CtxErrorf(c, "request failed path=%s: %v", ctx.Path(), apiErr)
		} else {
			hlog.CtxInfof(c, "request rejected path=%s: %v", ctx.Path(), apiErr)
		}
		ctx.AbortWithStatusJSON(apiErr.StatusCode, model.NewErrorResponse(apiErr))
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			// 动态校验来源
			AllowOriginFunc: func(origin string) bool {
				for _, domain := range corsConfig.TrustedDomains {
					if strings.HasSuffix(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

// TimeoutMiddleware attaches a deadline to the request context. Everything
// downstream takes that context, so a slow collaborator surfaces as a timeout
// error through ErrorHandlerMiddleware.
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if seconds <= 0 {
			ctx.Next(c)
			return
		}

		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx) // 关键：传入超时上下文

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(timeoutCtx, "request timeout path=%s", ctx.Path())
		}
	}
}

// RateLimitMiddleware 令牌桶算法限流
func RateLimitMiddleware(n int, interval time.Duration) app.HandlerFunc {
	limiter := NewLimiter(n, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s", ctx.Path())
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests,
				model.NewAPIResponse(http.StatusTooManyRequests, nil, "too many requests"))
			return
		}
		ctx.Next(c)
	}
}

// NewLimiter allows n events per interval with a burst of n. A non-positive
// n or interval disables limiting.
func NewLimiter(n int, interval time.Duration) *rate.Limiter {
	if n <= 0 || interval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(interval/time.Duration(n)), n)
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`<script.*?>|<\/script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`\b(union|select|drop|delete|insert)\b`)

	bodyExempt := make(map[string]bool, len(sec.BodyCheckExempt))
	for _, p := range sec.BodyCheckExempt {
		bodyExempt[p] = true
	}

	allowedMethods := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowedMethods[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if isInvalidUserAgent(ctx) {
			securityResponse(ctx, 400001, "missing required header: User-Agent", http.StatusBadRequest)
			return
		}

		// 防护机制2：请求体大小限制
		if sec.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sec.MaxBodySize {
			securityResponse(ctx, 413001, "request body exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}

		// 防护机制3：参数恶意字符检查
		if hasMaliciousContent(ctx, xssRegex, sqlInjectRegex, !bodyExempt[string(ctx.Path())]) {
			securityResponse(ctx, 422001, "request contains invalid characters", http.StatusUnprocessableEntity)
			return
		}

		// 防护机制4：检查HTTP方法
		if len(allowedMethods) > 0 && !allowedMethods[string(ctx.Method())] {
			securityResponse(ctx, 405001, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// 防护机制5：Host 白名单
		if !isAllowedHost(ctx, sec.AllowedHosts) {
			securityResponse(ctx, 421001, "host not allowed", http.StatusMisdirectedRequest)
			return
		}

		ctx.Next(c)
	}
}

// 辅助方法：判断User-Agent合法性
func isInvalidUserAgent(ctx *app.RequestContext) bool {
	ua := string(ctx.GetHeader("User-Agent"))
	return ua == ""
}

func isAllowedHost(ctx *app.RequestContext, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	host := string(ctx.Request.Header.Host())
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	for _, h := range allowed {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// 带性能优化的版本
func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp, sql *regexp.Regexp, checkBody bool) bool {
	var found int32

	check := func(data []byte) bool {
		return xss.Match(data) || sql.Match(data)
	}

	visitor := func(key, value []byte) {
		if atomic.LoadInt32(&found) == 1 {
			return // 已经找到匹配，跳过后续检查
		}
		if check(key) || check(value) {
			atomic.StoreInt32(&found, 1)
		}
	}

	// 检查Query参数
	ctx.QueryArgs().VisitAll(visitor)
	if atomic.LoadInt32(&found) == 1 {
		return true
	}

	// 检查Post表单参数；注册接口的密码等字段不做关键字匹配
	if !checkBody {
		return false
	}
	ctx.PostArgs().VisitAll(visitor)
	return atomic.LoadInt32(&found) == 1
}

// 安全响应统一处理
func securityResponse(ctx *app.RequestContext, code int, msg string, status int) {
	hlog.Warnf("SecurityAlert[code=%d]: %s", code, msg)
	ctx.AbortWithStatusJSON(status, model.NewAPIResponse(status, nil, msg))
}
