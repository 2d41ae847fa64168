package model

// User is the authenticated GitHub account.
type User struct {
	Login      string
	Name       string
	AvatarURL  string
	ProfileURL string
}

// DisplayName returns Name, falling back to Login when the profile has no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
