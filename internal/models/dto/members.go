package dto

import "github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type MemberPage struct {
	Items    []models.Member `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type RecordPage struct {
	Items    []models.MemberRecord `json:"items"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

type ConsumeResponse struct {
	Record models.MemberRecord `json:"record"`
	Member models.Member       `json:"member"`
}
