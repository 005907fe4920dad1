package session

import (
	"context"
	"errors"

	"github.com/basekit-io/basekit/internal/client/api"
	"github.com/basekit-io/basekit/internal/common"
)

// Validation failure reasons.
const (
	ReasonUnableToVerify     = "unable to verify session"
	ReasonAccountGone        = "account no longer exists"
	ReasonAccountDeactivated = "account has been deactivated"
)

// Forced-logout reasons for change-feed events.
const (
	ReasonDeleted     = "account deleted"
	ReasonDeactivated = "account deactivated"
)

// Result is the outcome of one validation pass. User is set only when
// the session is valid.
type Result struct {
	Valid  bool
	Reason string
	User   *api.User
}

type userReader interface {
	User(ctx context.Context, id string) (*api.User, error)
}

// Validator checks a session against the server's user record. It is
// used on demand after a sign-in or restore, and periodically by the
// Watcher.
type Validator struct {
	client userReader
}

func NewValidator(client userReader) *Validator {
	return &Validator{client: client}
}

// Validate fetches the account backing the session. The check fails
// closed: a session that cannot be verified is treated as invalid.
func (v *Validator) Validate(ctx context.Context, userID string) Result {
	user, err := v.client.User(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Result{Reason: ReasonAccountGone}
		}
		return Result{Reason: ReasonUnableToVerify}
	}
	if !user.IsActive {
		return Result{Reason: ReasonAccountDeactivated}
	}
	return Result{Valid: true, User: user}
}
