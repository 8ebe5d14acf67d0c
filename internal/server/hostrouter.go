package server

import (
	"net"
	"net/http"
)

// hostRouter dispatches on the request's Host header, ignoring any port.
// Hosts without a dedicated handler fall through to the default, which
// serves the host-independent surface only.
type hostRouter struct {
	hosts      map[string]http.Handler
	defaultMux http.Handler
}

func newHostRouter(defaultMux http.Handler) *hostRouter {
	return &hostRouter{hosts: map[string]http.Handler{}, defaultMux: defaultMux}
}

func (hr *hostRouter) add(host string, handler http.Handler) {
	hr.hosts[host] = handler
}

// ServeHTTP implements http.Handler.
func (hr *hostRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := hr.hosts[stripPort(r.Host)]; ok {
		handler.ServeHTTP(w, r)
		return
	}
	hr.defaultMux.ServeHTTP(w, r)
}

// stripPort drops the port component of a Host header value, if present.
func stripPort(host string) string {
	if bare, _, err := net.SplitHostPort(host); err == nil {
		return bare
	}
	return host
}
