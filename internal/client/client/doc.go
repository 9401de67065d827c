// Package client contains the gophauth client used by the CLI.
//
// GRPCClient talks to gophauth.AuthService. It injects the current access
// token into every call and, when the server answers Unauthenticated with
// "token expired", rotates the pair once through RefreshToken and retries
// the call with the fresh access token. Rotated pairs are reported through
// OnTokensRefreshed so the caller can persist them.
//
// Status codes are mapped to sentinel errors (ErrUnavailable, ErrUnauthorized,
// ErrRejected) that callers can match with errors.Is.
package client
