package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/basekit-io/basekit/internal/common"
)

// Error body codes. Clients match on the code, not the message.
const (
	codeBadRequest      = "BAD_REQUEST"
	codeUnauthorized    = "UNAUTHORIZED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeInvalidToken    = "INVALID_TOKEN"
	codeTokenUsed       = "TOKEN_USED"
	codeTokenExpired    = "TOKEN_EXPIRED"
	codeUnsupportedType = "UNSUPPORTED_TYPE"
	codeRateLimited     = "RATE_LIMITED"
	codeInternal        = "INTERNAL"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeServiceError maps service-layer sentinels onto the HTTP error
// vocabulary. Unrecognized errors become a generic 500; their detail
// stays in the logs.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrUnsupportedAccountType):
		writeError(w, http.StatusBadRequest, codeUnsupportedType, err.Error())
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, codeInvalidToken, "invalid token")
	case errors.Is(err, common.ErrTokenUsed):
		writeError(w, http.StatusConflict, codeTokenUsed, "token already used")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, codeTokenExpired, "refresh token expired")
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, codeTokenExpired, "token expired")
	case errors.Is(err, common.ErrResetRequestFailed):
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, codeBadRequest, "email already registered")
	default:
		a.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// decodeJSON reads one JSON value from the body, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
