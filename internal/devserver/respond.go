package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/slicemaster/storefront/pkg/logger"
)

// errBody is the error envelope the client's gateway parses: a machine code
// plus a human message.
type errBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		w.Write([]byte("{}"))
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("devserver: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errBody{Error: code, Message: message})
}

// decode reads a JSON request body into dst and writes the validation error
// itself on failure. Returns false when the handler should bail out.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return false
	}
	return true
}
