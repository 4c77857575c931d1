package dto

// RegisterRequest describes the registration payload. Role is "client" or
// "provider"; display name is only used for providers.
type RegisterRequest struct {
	Login       string `json:"login"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest describes login/password payload.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
