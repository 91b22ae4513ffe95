package utils

import (
	"encoding/json"
	"ms-verify/internal/models"
	"net/http"
)

// WriteJSON encodes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError sends the {"error": message} body every failure path uses.
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, models.ErrorResponse{Error: message})
}
