package model

// Todo is one task as returned by the remote API. Read-only on our side.
type Todo struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
	AssigneeID int    `json:"userId"`
}

// Query is the server-side part of a Filter.
// Nil fields are left out of the request.
type Query struct {
	UserID    *int
	Completed *bool
}
