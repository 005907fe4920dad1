package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/basekit-io/basekit/internal/common"
)

// maxResponseBytes caps how much of a response body is read, so a
// misbehaving endpoint cannot exhaust client memory.
const maxResponseBytes = 1 << 20

// Error is a decoded server error without a sentinel mapping, for
// example BAD_REQUEST validation failures or RATE_LIMITED.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// sentinelFor maps the server's error vocabulary back onto the shared
// sentinels. Codes outside the table return nil and keep their decoded
// form.
func sentinelFor(code string) error {
	switch code {
	case "UNAUTHORIZED":
		return common.ErrorUnauthorized
	case "FORBIDDEN":
		return common.ErrorForbidden
	case "NOT_FOUND":
		return common.ErrorNotFound
	case "INVALID_TOKEN":
		return common.ErrInvalidToken
	case "TOKEN_USED":
		return common.ErrTokenUsed
	case "TOKEN_EXPIRED":
		return common.ErrTokenExpired
	case "UNSUPPORTED_TYPE":
		return common.ErrUnsupportedAccountType
	case "INTERNAL":
		return common.ErrorInternal
	default:
		return nil
	}
}

// decodeError turns a non-success response into an error. Bodies in the
// `{"error":{"code","message"}}` shape map to sentinels where the code
// allows; anything else is preserved as *Error.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Code == "" {
		return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if sentinel := sentinelFor(parsed.Error.Code); sentinel != nil {
		if parsed.Error.Message == "" || parsed.Error.Message == sentinel.Error() {
			return sentinel
		}
		return fmt.Errorf("%s: %w", parsed.Error.Message, sentinel)
	}
	return &Error{Status: resp.StatusCode, Code: parsed.Error.Code, Message: parsed.Error.Message}
}
