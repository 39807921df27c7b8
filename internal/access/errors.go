package access

import "errors"

var (
	// ErrInvalidRole indicates a role string outside the closed role set.
	ErrInvalidRole = errors.New("access: invalid role")
	// ErrUnknownCategory indicates a screen category without a default role set.
	ErrUnknownCategory = errors.New("access: unknown category")
	// ErrUnknownModule indicates a module key outside the closed module set.
	ErrUnknownModule = errors.New("access: unknown module")
	// ErrUnknownPermission indicates a permission key outside the permission table.
	ErrUnknownPermission = errors.New("access: unknown permission")
	// ErrDuplicateRoute indicates two route descriptors sharing a pattern.
	ErrDuplicateRoute = errors.New("access: duplicate route")
	// ErrInvalidRoute indicates a malformed route descriptor.
	ErrInvalidRoute = errors.New("access: invalid route")
	// ErrInvalidIdentity indicates an empty or malformed user identity.
	ErrInvalidIdentity = errors.New("access: invalid identity")
)
