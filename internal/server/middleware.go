package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/threadlane/delegator/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, Features"
	corsMaxAge       = 300
)

// CORSMiddleware enforces the configured cross-origin policy. An empty
// origin list disables CORS entirely: no headers are added and preflights
// fall through to the wrapped handler.
type CORSMiddleware struct {
	handler http.Handler
	origins []string
}

// NewCORSMiddleware wraps handler with the CORS policy for origins. The
// single entry "*" allows every origin.
func NewCORSMiddleware(handler http.Handler, origins []string) *CORSMiddleware {
	return &CORSMiddleware{handler: handler, origins: origins}
}

// ServeHTTP implements http.Handler.
func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(m.origins) == 0 {
		m.handler.ServeHTTP(w, r)
		return
	}

	origin := r.Header.Get("Origin")
	allowed := origin != "" && m.originAllowed(origin)
	if allowed {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
		w.Header().Add("Vary", "Origin")
	}

	if r.Method == http.MethodOptions {
		if allowed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusForbidden)
		}
		return
	}

	m.handler.ServeHTTP(w, r)
}

func (m *CORSMiddleware) originAllowed(origin string) bool {
	for _, candidate := range m.origins {
		if candidate == "*" || strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

// requestMiddleware assigns each request an id, threads it through the
// logging context together with the request host, and echoes it back in the
// response headers.
type requestMiddleware struct {
	handler http.Handler
	log     logger.Logger
}

func newRequestMiddleware(handler http.Handler, log logger.Logger) *requestMiddleware {
	return &requestMiddleware{handler: handler, log: log}
}

// ServeHTTP implements http.Handler.
func (m *requestMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, requestID)

	ctx := logger.WithRequestID(r.Context(), requestID)
	ctx = logger.WithVirtualhost(ctx, stripPort(r.Host))

	m.log.Debugf(ctx, "%s %s", r.Method, r.URL.Path)
	m.handler.ServeHTTP(w, r.WithContext(ctx))
}
