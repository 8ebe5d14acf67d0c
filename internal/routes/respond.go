package routes

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/threadlane/delegator/pkg/errors"
	"github.com/threadlane/delegator/pkg/logger"

	"github.com/threadlane/delegator/internal/headers"
)

// RespondJSON writes value as a JSON response with the given status.
func RespondJSON(ctx context.Context, log logger.Logger, w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Errorf(logger.WithError(ctx, err), "Failed to encode response body")
	}
}

// RespondError writes the wire form of an evaluation error. All evaluation
// failures surface as 500 with the {"err": kind} body.
func RespondError(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	log.Errorf(logger.WithError(ctx, err), "Request failed with kind %s", apperrors.Kind(err))
	RespondJSON(ctx, log, w, http.StatusInternalServerError, apperrors.AsJSON(err))
}

// DecodeBody decodes the request body into dst. On failure it writes a 400
// protocol error and returns false.
func DecodeBody(ctx context.Context, log logger.Logger, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Warnf(logger.WithError(ctx, err), "Rejecting request with undecodable body")
		RespondJSON(ctx, log, w, http.StatusBadRequest, apperrors.AsJSON(&apperrors.InvalidJSONError{Err: err}))
		return false
	}
	return true
}

// bearerOwner extracts and verifies the request's bearer token. Nil when the
// header is absent, malformed, or fails verification.
func bearerOwner(r *http.Request, secret string) *headers.BearerFields {
	auth := headers.ParseAuthorization(r.Header.Get("Authorization"))
	return auth.VerifyBearer(secret)
}
