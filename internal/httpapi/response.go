package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the JSON envelope of every /api/send-resume reply.
type Response struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Simulated bool   `json:"simulated,omitempty"`
	Error     string `json:"error,omitempty"`
	Detail    any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
