package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError answers with the API's JSON error shape,
// {"error":{"code":"...","message":"..."}}, so rejections made before a
// handler runs look the same as handler errors.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may have disconnected
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
