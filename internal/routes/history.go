package routes

import (
	"net/http"

	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/transform"
	"github.com/threadlane/delegator/pkg/logger"
)

type postSearchHistoryRequest struct {
	Limit *float64 `json:"limit"`
}

// emptyHistory is the degraded response when the history backend cannot
// serve. Search history is decoration, not a hard dependency.
var emptyHistory = map[string]interface{}{"results": []interface{}{}}

// RegisterHistory mounts the owner-scoped search history flow. Responses
// are memoized per owner so repeat fetches skip the backend.
func RegisterHistory(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /search-history", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postSearchHistoryRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		owner := bearerOwner(r, deps.CookieSecret)
		if owner == nil {
			RespondJSON(ctx, deps.Log, w, http.StatusUnauthorized, map[string]interface{}{})
			return
		}
		ctx = logger.WithOwnerID(ctx, owner.OwnerID)

		payload := map[string]interface{}{"owner_id": owner.OwnerID}
		if req.Limit != nil {
			payload["limit"] = *req.Limit
		}
		c := cryptogram.New(
			cryptogram.Build("history", "search").
				Payload(payload).
				MemoizationPrefix("history-" + owner.OwnerID + "-").
				Finish(),
		)

		final, _, err := deps.Evaluator.Evaluate(ctx, c, transform.NewState())
		if err != nil {
			deps.Log.Warnf(logger.WithError(ctx, err), "Substituting empty search history")
			RespondJSON(ctx, deps.Log, w, http.StatusOK, emptyHistory)
			return
		}
		RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	})
}
