package response

import "garage-reservation/internal/usecase"

type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	StudentID string `json:"student_id"`
}

func FromLoginResult(r *usecase.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     r.Token,
		Username:  r.Username,
		Role:      r.Role,
		StudentID: r.StudentID,
	}
}
