// Package registry holds the typed map of backend services a cryptogram
// step can address. The registry is built from configuration at startup and
// read-only afterwards, so it is shared freely across evaluations.
package registry

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/threadlane/delegator/pkg/errors"
)

// MethodDef is one callable method of a service: an HTTP method plus the
// path-and-query component appended to the service authority.
type MethodDef struct {
	HTTPMethod   string `json:"method" mapstructure:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	PathAndQuery string `json:"path" mapstructure:"path" validate:"required,startswith=/"`
}

// ServiceDefinition describes one REST backend: where it lives and which
// methods it exposes. Virtualhosts optionally lists the virtualhost names
// whose routes may address the service.
type ServiceDefinition struct {
	Protocol     string               `json:"protocol" mapstructure:"protocol" validate:"required,eq=rest"`
	Scheme       string               `json:"scheme" mapstructure:"scheme" validate:"required,oneof=http https"`
	Authority    string               `json:"authority" mapstructure:"authority" validate:"required"`
	Methods      map[string]MethodDef `json:"methods" mapstructure:"methods" validate:"required,dive"`
	Virtualhosts []string             `json:"virtualhosts,omitempty" mapstructure:"virtualhosts"`
}

// Services maps service names to their definitions.
type Services map[string]ServiceDefinition

// Resolve looks up the service and method referenced by a step.
func (s Services) Resolve(service, method string) (*ServiceDefinition, *MethodDef, error) {
	def, ok := s[service]
	if !ok {
		return nil, nil, &apperrors.UnknownServiceError{Name: service}
	}
	meth, ok := def.Methods[method]
	if !ok {
		return nil, nil, &apperrors.UnknownMethodError{Service: service, Method: method}
	}
	return &def, &meth, nil
}

// BuildURI assembles the outbound URI for a method of the service.
func (d *ServiceDefinition) BuildURI(meth *MethodDef) (string, error) {
	if d.Scheme != "http" && d.Scheme != "https" {
		return "", &apperrors.URIBuilderError{Reason: fmt.Sprintf("unsupported scheme %q", d.Scheme)}
	}
	if d.Authority == "" {
		return "", &apperrors.URIBuilderError{Reason: "empty authority"}
	}
	if !strings.HasPrefix(meth.PathAndQuery, "/") {
		return "", &apperrors.URIBuilderError{Reason: fmt.Sprintf("path %q must start with /", meth.PathAndQuery)}
	}
	uri := d.Scheme + "://" + d.Authority + meth.PathAndQuery
	if _, err := url.ParseRequestURI(uri); err != nil {
		return "", &apperrors.URIBuilderError{Reason: err.Error()}
	}
	return uri, nil
}
