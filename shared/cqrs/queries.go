package cqrs

// GetUserQuery fetches the public view of the authenticated user.
type GetUserQuery struct {
	UserID int64
}
