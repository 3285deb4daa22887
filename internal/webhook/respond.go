// Package webhook — HTTP-транспорт WhatsApp и служебные эндпоинты бэк-офиса.
package webhook

import (
	"encoding/json"
	"net/http"
)

// JSON пишет ответ в формате JSON с указанным кодом
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
