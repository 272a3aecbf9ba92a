package domain

import "fmt"

type User struct {
	Id          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
}

// UserRequest is the payload for registration and profile updates
type UserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

func (u *User) Handle() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tUsername: %s \n\tDisplayName: %s \n\tEmail: %s", u.Id, u.Username, u.DisplayName, u.Email)
}
