package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Message is the body shape of plain status replies.
type Message string

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"message": string(m)})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
