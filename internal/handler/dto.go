package handler

import (
	"github.com/bookish/account-service/internal/model"
)

// profileResp is the full profile projection returned by signin,
// is-auth and update-profile.  Field order is part of the contract.
type profileResp struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Favorites []string   `json:"favorites"`
	Verified  bool       `json:"verified"`
	UserType  model.Role `json:"userType"`
}

// authorProfileResp is the restricted projection exposed for author
// profile reads.
type authorProfileResp struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	UserType model.Role `json:"userType"`
}

func formatProfile(u *model.User) profileResp {
	favorites := make([]string, 0, len(u.Favorites))
	for _, f := range u.Favorites {
		favorites = append(favorites, f.Hex())
	}
	return profileResp{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		Favorites: favorites,
		Verified:  u.Verified,
		UserType:  u.UserType,
	}
}
