package domain

// CtxKey is the typed key used for principal data in request contexts.
// The auth middleware stores the values under both gin's keystore (as
// plain strings) and the request context (as CtxKey) so handlers and
// usecases can each read them idiomatically.
type CtxKey string

const (
	// KeyUserID holds the identity provider subject of the caller.
	KeyUserID CtxKey = "UserID"
	// KeyUserEmail holds the caller's verified email.
	KeyUserEmail CtxKey = "Email"
	// KeyUserRole holds the caller's profile role at auth time.
	KeyUserRole CtxKey = "Role"
)
