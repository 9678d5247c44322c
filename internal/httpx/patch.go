package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

// restrictedEditFields may never be changed through a profile or catalog edit.
var restrictedEditFields = []string{
	"email", "password", "role",
	"pharmacy_id", "user_id", "medicine_id", "id",
	"identification_code",
}

// DecodePatch decodes a PATCH body into dst, rejecting any restricted field
// present in the payload.
func DecodePatch(r *http.Request, dst interface{}) error {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	for _, f := range restrictedEditFields {
		if _, ok := fields[f]; ok {
			return apperr.InvalidInput("cannot update restricted field %q", f)
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	return nil
}
