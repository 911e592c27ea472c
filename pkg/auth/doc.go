// Package auth implements password logins for tenant users and platform
// admins: bcrypt hashing, a failed-attempt lockout policy and an
// Authenticator that ties both to an AccountStore.
//
// # Hashing
//
// Hasher wraps golang.org/x/crypto/bcrypt. Stored passwords use
// DefaultCost (12); tests may use bcrypt.MinCost.
//
//	h := auth.NewHasher(auth.DefaultCost)
//	hash, err := h.Hash("s3cret-pass")
//	err = h.Compare(hash, "s3cret-pass") // nil or ErrInvalidCredentials
//
// # Lockout
//
// DefaultLockout locks an account for two hours once five consecutive
// logins have failed. An expired lock restarts the counter.
//
// # Authentication
//
// Authenticate runs the login checks in a fixed order: unknown user,
// lock, inactive account, password. The errors map to HTTP 401
// (ErrInvalidCredentials, ErrAccountInactive) and 423 (ErrAccountLocked).
//
//	authn := auth.NewAuthenticator(auth.WithLogger(log))
//	account, err := authn.Authenticate(ctx, store, "jane", "s3cret-pass")
package auth
