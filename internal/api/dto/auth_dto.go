package dto

// ==================== 鉴权 DTO ====================

// RegisterRequest 注册
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token string `json:"token"`
	Owner OwnerVO `json:"owner"`
}

// OwnerVO 账号视图
type OwnerVO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
