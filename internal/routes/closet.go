package routes

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/threadlane/delegator/pkg/logger"
)

type postPaginateListsRequest struct {
	ListType string `json:"type"`
}

type postPaginateListRequest struct{}

// RegisterCloset mounts the closet list flows. Both are bearer-gated and
// currently return stubbed pagination payloads while the closet backend is
// being built out.
func RegisterCloset(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /lists", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postPaginateListsRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		owner := bearerOwner(r, deps.CookieSecret)
		if owner == nil {
			RespondJSON(ctx, deps.Log, w, http.StatusUnauthorized, map[string]interface{}{})
			return
		}
		ctx = logger.WithOwnerID(ctx, owner.OwnerID)

		deps.Log.Warnf(ctx, "Stubbing out list pagination response for lists of type %s", req.ListType)
		RespondJSON(ctx, deps.Log, w, http.StatusOK, map[string]interface{}{
			"results": []interface{}{
				map[string]interface{}{
					"id":        uuid.New().String(),
					"name":      "Default Closet",
					"createdAt": time.Now().UTC().Format(time.RFC3339),
				},
			},
		})
	})

	mux.HandleFunc("POST /list/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		var req postPaginateListRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		owner := bearerOwner(r, deps.CookieSecret)
		if owner == nil {
			RespondJSON(ctx, deps.Log, w, http.StatusUnauthorized, map[string]interface{}{})
			return
		}
		ctx = logger.WithOwnerID(ctx, owner.OwnerID)

		deps.Log.Warnf(ctx, "Stubbing out list pagination response for list %s", listID)
		RespondJSON(ctx, deps.Log, w, http.StatusOK, map[string]interface{}{
			"id":                  listID.String(),
			"product_variant_ids": []interface{}{},
			"has_more":            false,
		})
	})
}
