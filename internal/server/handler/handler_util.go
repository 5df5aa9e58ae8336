package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var ErrNoLine = errors.New("no log line provided")

func HttpError(w http.ResponseWriter, message string, code int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(ErrorMessage{Message: message})
	if err != nil {
		logger.Error("Error encountered when encoding error message", zap.Error(err))
	}
}
