package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/nedu/taskhub/internal/domain"
)

// errorResponse is the envelope the client sees for every failure:
// response_code is a finer-grained tracking id than the HTTP status.
type errorResponse struct {
	ResponseCode int    `json:"response_code"`
	Message      string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps a domain error kind to its HTTP status and
// envelope. Anything that is not a domain error is a store/transport
// failure: logged, and reported as the opaque unable-to-complete
// error.
func respondError(w http.ResponseWriter, err error) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		log.Printf("ERROR [handlers] %v", err)
		appErr = domain.ErrUnableToCompleteRequest
	}

	respondJSON(w, statusForKind(appErr.Kind), errorResponse{
		ResponseCode: appErr.Code,
		Message:      appErr.Message,
	})
}

// intQuery parses an optional numeric query value, zero when absent
// or malformed.
func intQuery(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindBadRequest, domain.KindDuplicate:
		return http.StatusBadRequest
	case domain.KindUnauthorized, domain.KindInvalidToken:
		return http.StatusUnauthorized
	case domain.KindForbidden, domain.KindNotPermitted:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
