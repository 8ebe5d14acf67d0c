// Package routes implements the preconfigured edge routes: thin handlers
// that build a cryptogram for a named product flow and hand it to the
// evaluator. Each bundle is registered onto the virtualhost that names it.
package routes

import (
	"net/http"

	"github.com/threadlane/delegator/internal/events"
	"github.com/threadlane/delegator/internal/evaluator"
	"github.com/threadlane/delegator/pkg/logger"
)

// Deps carries everything a route bundle needs.
type Deps struct {
	Evaluator    *evaluator.Evaluator
	Log          logger.Logger
	CookieSecret string
	// UserAction is the user-action event topic; nil disables emission.
	UserAction *events.Topic
}

// RegisterFunc mounts one bundle of routes onto a virtualhost mux.
type RegisterFunc func(mux *http.ServeMux, deps Deps)

// Builtin maps virtualhost names to their route bundles.
var Builtin = map[string]RegisterFunc{
	"catalog": RegisterCatalog,
	"pricing": RegisterPricing,
	"history": RegisterHistory,
	"closet":  RegisterCloset,
}
