package model

type RegisterRequest struct {
	UserId string  `json:"userid"`
	Email  string  `json:"email"`
	Passwd *string `json:"passwd"`
}

type RegisterResponse struct {
	UserId string `json:"userid"`
}

type LoginRequest struct {
	UserId string  `json:"userid"`
	Passwd *string `json:"passwd"`
}

type LoginResponse struct {
	UserId string `json:"userid"`
	Expire int64  `json:"expire"`
}

