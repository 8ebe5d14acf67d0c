package routes

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/events"
	"github.com/threadlane/delegator/internal/headers"
	"github.com/threadlane/delegator/internal/transform"
)

type postSearchRequest struct {
	Q           string      `json:"q"`
	Start       interface{} `json:"start"`
	PageContext interface{} `json:"page_context"`
}

type postSuggestionsRequest struct {
	Q string `json:"q"`
}

type postProductRequest struct {
	ProductVariantID string `json:"product_variant_id"`
}

// RegisterCatalog mounts the catalog flows: search, suggestions, explore
// and product lookup.
func RegisterCatalog(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postSearchRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		owner := bearerOwner(r, deps.CookieSecret)
		c := searchCryptogram(&req, owner, deps.UserAction)

		final, _, err := deps.Evaluator.Evaluate(ctx, c, transform.NewState())
		if err != nil {
			RespondError(ctx, deps.Log, w, err)
			return
		}
		RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	})

	mux.HandleFunc("POST /suggestions", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postSuggestionsRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		c := cryptogram.New(
			cryptogram.Build("catalog", "suggest").
				Payload(map[string]interface{}{"q": req.Q}).
				Finish(),
		)
		final, _, err := deps.Evaluator.Evaluate(ctx, c, transform.NewState())
		if err != nil {
			RespondError(ctx, deps.Log, w, err)
			return
		}
		RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	})

	mux.HandleFunc("POST /explore", func(w http.ResponseWriter, r *http.Request) {
		// intentionally a stub
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /product", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postProductRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		c := cryptogram.New(
			cryptogram.Build("catalog", "lookup").
				Payload(map[string]interface{}{
					"product_variant_ids": []interface{}{req.ProductVariantID},
				}).
				Finish(),
		)
		final, _, err := deps.Evaluator.Evaluate(ctx, c, transform.NewState())
		if err != nil {
			RespondError(ctx, deps.Log, w, err)
			return
		}
		RespondJSON(ctx, deps.Log, w, http.StatusOK, final)
	})
}

// searchCryptogram assembles the two-step search flow: the search backend
// yields product variant ids plus a pagination cursor, the lookup backend
// resolves the ids, and the cursor rejoins the response through the
// scratchpad. When a user-action topic is configured, the outbound query and
// the search results are shipped to it.
func searchCryptogram(req *postSearchRequest, owner *headers.BearerFields, topic *events.Topic) *cryptogram.Cryptogram {
	searchPostflight := &transform.Splat{Terms: []transform.Language{
		transform.Pipe(&transform.At{Key: "next_start"}, &transform.Set{Name: "next_start"}),
		&transform.Object{Entries: []transform.Entry{
			{Key: "product_variant_ids", Value: transform.Pipe(
				&transform.At{Key: "results"},
				&transform.Array{Next: &transform.At{Key: "product_variant_id"}},
			)},
		}},
	}}

	search := cryptogram.Build("catalog", "search").
		Payload(map[string]interface{}{"q": req.Q, "start": req.Start})

	var searchStep cryptogram.Step
	if topic != nil {
		var ownerID *string
		if owner != nil {
			ownerID = &owner.OwnerID
		}
		contextID := uuid.New()
		searchStep = search.
			Preflight(&transform.EmitEvent{
				OwnerID:     ownerID,
				Topic:       *topic,
				EventType:   events.EventTypeSearch,
				ContextID:   contextID,
				PageContext: req.PageContext,
			}).
			Postflight(transform.Pipe(
				&transform.EmitEvent{
					OwnerID:     ownerID,
					Topic:       *topic,
					EventType:   events.EventTypeSearchResult,
					ContextID:   contextID,
					PageContext: req.PageContext,
				},
				searchPostflight,
			)).
			Finish()
	} else {
		searchStep = search.Postflight(searchPostflight).Finish()
	}

	lookupStep := cryptogram.Build("catalog", "lookup").
		Payload(nil).
		Postflight(&transform.Object{Entries: []transform.Entry{
			{Key: "results", Value: &transform.At{Key: "results"}},
			{Key: "next_start", Value: &transform.Get{Name: "next_start"}},
		}}).
		Finish()

	return cryptogram.New(searchStep, lookupStep)
}
