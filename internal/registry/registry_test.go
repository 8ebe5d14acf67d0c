package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/threadlane/delegator/pkg/errors"
)

func testServices() Services {
	return Services{
		"catalog": {
			Protocol:  "rest",
			Scheme:    "http",
			Authority: "catalog.internal:8080",
			Methods: map[string]MethodDef{
				"search": {HTTPMethod: "POST", PathAndQuery: "/search/"},
				"lookup": {HTTPMethod: "POST", PathAndQuery: "/product_variants/"},
			},
		},
	}
}

func TestResolve(t *testing.T) {
	def, meth, err := testServices().Resolve("catalog", "search")
	require.NoError(t, err)
	assert.Equal(t, "catalog.internal:8080", def.Authority)
	assert.Equal(t, "POST", meth.HTTPMethod)
	assert.Equal(t, "/search/", meth.PathAndQuery)
}

func TestResolveUnknownService(t *testing.T) {
	_, _, err := testServices().Resolve("missing", "search")
	var unknownService *apperrors.UnknownServiceError
	require.ErrorAs(t, err, &unknownService)
	assert.Equal(t, "missing", unknownService.Name)
}

func TestResolveUnknownMethod(t *testing.T) {
	_, _, err := testServices().Resolve("catalog", "missing")
	var unknownMethod *apperrors.UnknownMethodError
	require.ErrorAs(t, err, &unknownMethod)
	assert.Equal(t, "catalog", unknownMethod.Service)
	assert.Equal(t, "missing", unknownMethod.Method)
}

func TestBuildURI(t *testing.T) {
	def, meth, err := testServices().Resolve("catalog", "lookup")
	require.NoError(t, err)

	uri, err := def.BuildURI(meth)
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.internal:8080/product_variants/", uri)
}

func TestBuildURIFailures(t *testing.T) {
	tests := []struct {
		name string
		def  ServiceDefinition
		meth MethodDef
	}{
		{
			name: "bad scheme",
			def:  ServiceDefinition{Scheme: "ftp", Authority: "x"},
			meth: MethodDef{HTTPMethod: "POST", PathAndQuery: "/a"},
		},
		{
			name: "empty authority",
			def:  ServiceDefinition{Scheme: "http"},
			meth: MethodDef{HTTPMethod: "POST", PathAndQuery: "/a"},
		},
		{
			name: "relative path",
			def:  ServiceDefinition{Scheme: "http", Authority: "x"},
			meth: MethodDef{HTTPMethod: "POST", PathAndQuery: "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.BuildURI(&tt.meth)
			var uriErr *apperrors.URIBuilderError
			require.ErrorAs(t, err, &uriErr)
		})
	}
}
