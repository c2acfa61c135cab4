package transport

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        any       `json:"user"`
}

type CreateDiaryRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID *uint  `json:"category_id"`
	Visibility string `json:"visibility"`
	TagIDs     []uint `json:"tag_ids"`
}

type PatchDiaryRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	Visibility *string `json:"visibility"`
	TagIDs     *[]uint `json:"tag_ids"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type ChartPoint struct {
	Date      string  `json:"date"`
	Intensity float64 `json:"intensity"`
}

type Donut struct {
	Happy int64 `json:"happy"`
	Sad   int64 `json:"sad"`
}

type TheoryResponse struct {
	Theory string `json:"theory"`
	Reply  string `json:"reply"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
