package httptransport

import (
	"encoding/json"
	"net/http"

	"carddemo/internal/platform/middleware"
	"carddemo/pkg/apierrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError translates a domain error into the shared envelope, so handler
// errors and middleware rejections are indistinguishable on the wire.
func writeError(w http.ResponseWriter, err error) {
	code := apierrors.CodeOf(err)
	middleware.WriteErrorEnvelope(w, apierrors.ToHTTPStatus(code), string(code), err.Error())
}

func decodeBody(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apierrors.New(apierrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
