package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/threadlane/delegator/internal/config_loader"
	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/routes"
	"github.com/threadlane/delegator/internal/transform"
	apperrors "github.com/threadlane/delegator/pkg/errors"
)

// registerCore mounts the host-independent surface.
func registerCore(mux *http.ServeMux, deps routes.Deps) {
	mux.HandleFunc("POST /evaluate", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		data, err := io.ReadAll(r.Body)
		if err != nil {
			routes.RespondJSON(ctx, deps.Log, w, http.StatusBadRequest,
				apperrors.AsJSON(&apperrors.InvalidJSONError{Err: err}))
			return
		}
		c, err := cryptogram.FromJSON(data)
		if err != nil {
			routes.RespondJSON(ctx, deps.Log, w, http.StatusBadRequest,
				apperrors.AsJSON(&apperrors.InvalidJSONError{Err: err}))
			return
		}

		final, _, err := deps.Evaluator.Evaluate(ctx, c, transform.NewState())
		if err != nil {
			routes.RespondError(ctx, deps.Log, w, err)
			return
		}
		routes.RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// newConfigRouteHandler serves one virtualhost route from its configured
// cryptogram. The cryptogram is decoded per request so concurrent
// evaluations never share step state.
func newConfigRouteHandler(deps routes.Deps, route config_loader.Route) (http.Handler, error) {
	// fail fast on undecodable config even though Load validates it too
	if _, err := route.ParseCryptogram(); err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body interface{}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			routes.RespondJSON(ctx, deps.Log, w, http.StatusBadRequest,
				apperrors.AsJSON(&apperrors.InvalidJSONError{Err: err}))
			return
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				routes.RespondJSON(ctx, deps.Log, w, http.StatusBadRequest,
					apperrors.AsJSON(&apperrors.InvalidJSONError{Err: err}))
				return
			}
		}

		c, err := route.ParseCryptogram()
		if err != nil {
			routes.RespondError(ctx, deps.Log, w, err)
			return
		}

		final, _, err := deps.Evaluator.EvaluateWithBody(ctx, c, body)
		if err != nil {
			routes.RespondError(ctx, deps.Log, w, err)
			return
		}
		routes.RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	}), nil
}
