package models

// AuthorSnapshot is the denormalized author data stamped on posts and
// comments. It is not refreshed when the user profile changes.
type AuthorSnapshot struct {
	Fullname string `json:"fullname" bson:"fullname"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

// UserProfile holds the fields read from the users collection
type UserProfile struct {
	ID       string `json:"_id" bson:"_id"`
	Fullname string `json:"fullname" bson:"fullname"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

// Snapshot returns the author snapshot of the profile
func (u UserProfile) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{Fullname: u.Fullname, Avatar: u.Avatar}
}
