package entity

type UserItem struct {
	Id       uint64 `json:"id"`
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  int32  `json:"is_admin"`
	Ctime    int64  `json:"ctime"`
	Mtime    int64  `json:"mtime"`
}

type CreateUserRequest struct {
	UserId         string
	Email          string
	PasswordDigest string //sha512 hex
	IsAdmin        bool
}

type CreateUserResponse struct {
}

// GetUserRequest UserId与Email二选一
type GetUserRequest struct {
	UserId string
	Email  string
}

type GetUserResponse struct {
	Item  *UserItem
	Exist bool
}

type UpdatePasswordRequest struct {
	UserId         string
	PasswordDigest string
}

type UpdatePasswordResponse struct {
}

type VerifyUserRequest struct {
	UserId         string
	PasswordDigest string
}

type VerifyUserResponse struct {
	Ok bool
}
