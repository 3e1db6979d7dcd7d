// Package ctx provides the request context handed to API handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding and the
// response envelope:
//
//	func (c *OrderController) Show(x *ctx.Context) {
//	    id, ok := x.ParamUint("id")
//	    ...
//	    x.Success(order)
//	}
//
//	router.Get("/commandes/{id}", "commandes.show", ctx.Wrap(orders.Show))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/commandes/pkg/bind"
	"github.com/shashiranjanraj/commandes/pkg/logger"
	"github.com/shashiranjanraj/commandes/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// QueryInt returns a positive integer query value, or def when it is
// missing, malformed or below 1.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ClientIP returns the client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation. On failure
// it sends a 400 carrying the first problem and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest, 0)
	if err != nil {
		c.Error(http.StatusBadRequest, "Corps de requête invalide")
		return false
	}
	if len(errs) > 0 {
		c.Error(http.StatusBadRequest, errs[0].Message)
		return false
	}
	return true
}

// Form reads form fields and validated uploads. Failures are returned for
// the caller to map, nothing is written.
func (c *Context) Form(limits bind.UploadLimits) (url.Values, []bind.File, error) {
	return bind.Form(c.R, limits)
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: data})
}

// Message sends a 200 envelope with a message and optional data.
func (c *Context) Message(message string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 envelope.
func (c *Context) Created(message string, data any) {
	c.JSON(http.StatusCreated, response.Envelope{Success: true, Message: message, Data: data})
}

// Paginated sends a list with its paging window.
func (c *Context) Paginated(data any, p response.Pagination) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: data, Pagination: &p})
}

// Error sends a failure envelope.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Success: false, Message: message})
}

// ServerError logs err and sends a 500 carrying message and the error text.
func (c *Context) ServerError(message string, err error) {
	c.Logger().Error(message, "error", err, "method", c.R.Method, "path", c.R.URL.Path)
	c.JSON(http.StatusInternalServerError, response.Envelope{Success: false, Message: message, Error: err.Error()})
}

// NotFound sends a 404.
func (c *Context) NotFound(message string) { c.Error(http.StatusNotFound, message) }

// Unauthorized sends a 401.
func (c *Context) Unauthorized(message string) { c.Error(http.StatusUnauthorized, message) }

// Forbidden sends a 403.
func (c *Context) Forbidden(message string) { c.Error(http.StatusForbidden, message) }

// WrittenStatus returns the status code written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
