package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes v as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err with the status of its kind. Internal errors only
// expose their public message.
func RespondError(w http.ResponseWriter, err error) {
	RespondJSON(w, KindOf(err).Status(), ErrorResponse{Message: PublicMessage(err)})
}
