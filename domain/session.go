package domain

// Session is the process-wide login state: the token pair plus a
// snapshot of the logged-in user. Created on login, replaced on token
// refresh, destroyed on logout or account deletion.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// LoginRequest is the credentials payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the token pair the backend answers a login with
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Success      bool   `json:"success"`
}

// RefreshRequest is the payload for trading a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the renewed token pair
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
