package models

import "strconv"

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OwnerID is the opaque identity under which the user's records are stored.
func (u *User) OwnerID() string {
	return strconv.FormatInt(u.ID, 10)
}
