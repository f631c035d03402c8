/*
Package user contains the user record and its in-memory store.

The store is an explicitly owned object: the server creates one at startup and hands it to the
handlers, and tests create isolated instances.
*/
package user

// User is a single user record as exposed by the REST API.
type User struct {
	// ID is unique within a store and never reused after deletion.
	ID int `json:"id"`

	// Name is the display name; never empty.
	Name string `json:"name"`

	// Email is required on create and full update.
	Email string `json:"email"`
}

// Patch holds the fields of a partial update. Nil or empty fields are left unchanged.
type Patch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// DemoUsers returns the records the tutorial server starts with.
func DemoUsers() []User {
	return []User{
		{ID: 1, Name: "Hong Gildong", Email: "hong@example.com"},
		{ID: 2, Name: "Yi Sunsin", Email: "lee@example.com"},
		{ID: 3, Name: "Jang Bogo", Email: "jang@example.com"},
	}
}
