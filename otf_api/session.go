package otf_api

import "context"

// Session supplies the bearer token attached to every request. Token
// acquisition (password login, device confirmation, token storage) lives
// behind this interface; the client only ever asks for a token and for a
// refresh when one is about to expire.
//
// Refresh is serialized by the client, so implementations do not need their
// own locking for the refresh path itself, only for reads racing a refresh.
type Session interface {
	// BearerToken returns the current token, without the "Bearer " prefix.
	BearerToken() string

	// ExpiresSoon reports whether the token is expired or will expire within
	// the implementation's safety margin.
	ExpiresSoon() bool

	// Refresh obtains a new token pair. A refresh failure is distinct from a
	// network error on the API itself and is surfaced unchanged.
	Refresh(ctx context.Context) error

	// MemberUUID is the member identifier claim from the token.
	MemberUUID() string

	// Email is the email claim from the token, required by the performance
	// summary API's headers.
	Email() string

	// CognitoID is the user pool subject, used by the body composition
	// endpoint in place of the member UUID.
	CognitoID() string
}
