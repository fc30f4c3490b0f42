package cqrs

type LoginCommand struct {
	Email    string
	Password string
}

// RefreshTokenCommand carries the identity taken from an already verified token.
type RefreshTokenCommand struct {
	UserID int64
	Email  string
}

type UpdateEmailCommand struct {
	UserID int64
	Email  string
}

// UpdateRoleCommand is authorised against RequestingUserID, never against
// anything supplied in the request body.
type UpdateRoleCommand struct {
	RequestingUserID int64
	TargetUserID     int64
	Role             string
}

type DeleteAccountCommand struct {
	UserID int64
}
