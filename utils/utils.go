package utils

import (
	"strings"

	"github.com/google/uuid"
)

type HttpResult struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg"`
	Data  interface{} `json:"data,omitempty"`
	Total int64       `json:"total,omitempty"`
}

// NewReferralCode returns an 8-char upper-case code.
func NewReferralCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
