package identity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoCurrentUser = errors.New("identity: no current user")
	ErrUnknownUser   = errors.New("identity: account lookup returned no user")
)

// failure reported by the identity provider, message kept verbatim
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity: %s: %s (status %d)", e.Op, e.Message, e.Status)
}

// reports whether err is a provider error carrying the given message code,
// e.g. EMAIL_EXISTS or INVALID_LOGIN_CREDENTIALS
func IsCode(err error, code string) bool {
	var idErr *Error
	if !errors.As(err, &idErr) {
		return false
	}

	rest, ok := strings.CutPrefix(idErr.Message, code)
	if !ok {
		return false
	}

	return rest == "" || rest[0] == ' ' || rest[0] == ':'
}
