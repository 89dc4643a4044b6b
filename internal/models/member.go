package models

import "time"

// Member is a paying customer holding a prepaid balance.
type Member struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Type      MemberType `json:"type"`
	Balance   float64    `json:"balance"`
	CreatedAt time.Time  `json:"created_at"`
}

// MemberInput carries the writable fields of a member for inserts and full overwrites.
type MemberInput struct {
	Name    string     `json:"name"`
	Phone   string     `json:"phone"`
	Type    MemberType `json:"type"`
	Balance float64    `json:"balance"`
}

// MemberRecord is one consumption event charged against a member.
type MemberRecord struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportResult summarises a CSV reconciliation import.
type ImportResult struct {
	Success    int `json:"success"`
	Failed     int `json:"failed"`
	Duplicated int `json:"duplicated"`
}

// Stats is the dashboard summary over all members.
type Stats struct {
	Total        int64   `json:"total"`
	Saving       int64   `json:"saving"`
	VIP          int64   `json:"vip"`
	TotalBalance float64 `json:"total_balance"`
	CreatedToday int64   `json:"created_today"`
}
