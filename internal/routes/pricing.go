package routes

import (
	"net/http"

	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/transform"
)

type postResalePriceRequest struct {
	Brand            string  `json:"brand"`
	ImageURL         string  `json:"image_url"`
	Q                string  `json:"q"`
	ProductVariantID *string `json:"product_variant_id"`
}

// RegisterPricing mounts the resale price flow: a single pricing lookup
// keyed on brand, image and query text.
func RegisterPricing(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /resale-price", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req postResalePriceRequest
		if !DecodeBody(ctx, deps.Log, w, r, &req) {
			return
		}

		c := cryptogram.New(
			cryptogram.Build("pricing", "lookup").
				Payload(map[string]interface{}{
					"brand":              req.Brand,
					"image_url":          req.ImageURL,
					"q":                  req.Q,
					"product_variant_id": req.ProductVariantID,
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
