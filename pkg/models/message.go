// Package models contains domain models for teamboard.
package models

// Message is a single logged assistant exchange. Entries are append-only;
// the only mutation after creation is explicit deletion.
//
// The snake_case JSON field names for the metadata columns are part of the
// original API contract.
type Message struct {
	ID             int64   `db:"id" json:"id"`
	Question       string  `db:"question" json:"question"`
	Answer         string  `db:"answer" json:"answer"`
	Timestamp      string  `db:"timestamp" json:"timestamp"`
	TokensUsed     *int64  `db:"tokens_used" json:"tokens_used"`
	ResponseTime   *int64  `db:"response_time" json:"response_time"`
	ModelUsed      *string `db:"model_used" json:"model_used"`
	TimestampEpoch int64   `db:"timestamp_epoch" json:"-"`
}

// MessageStats mirrors the message stats payload of the original API.
type MessageStats struct {
	TotalMessages       int64 `json:"totalMessages"`
	TodayMessages       int64 `json:"todayMessages"`
	AverageResponseTime int64 `json:"averageResponseTime"`
}
