package user

// Principal identifies the authenticated caller as resolved by the
// account service introspection endpoint.
type Principal struct {
	UserID string
	Email  string
}
