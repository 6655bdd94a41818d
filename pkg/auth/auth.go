package auth

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

const (
	XUserIDHeader   = "X-User-Id"
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrNoIdentity = errors.New("identity is missing")

// Identity is the caller as asserted by the upstream gateway.
type Identity struct {
	UserID   int64
	UserName string
	Role     string
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// ParseIdentity builds an Identity from raw header values.
func ParseIdentity(rawID, userName, role string) (Identity, error) {
	if rawID == "" {
		return Identity{}, errors.Wrap(ErrNoIdentity, "user-id is empty")
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, errors.Wrap(ErrNoIdentity, "user-id is invalid")
	}
	if role == "" {
		role = RoleUser
	}
	if userName == "" {
		userName = rawID
	}
	return Identity{UserID: userID, UserName: userName, Role: role}, nil
}
