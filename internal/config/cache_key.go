package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's active session JTI
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ResetOTPKey returns the cache key for a password-reset OTP
func (r *CacheKeyStruct) ResetOTPKey(email string) string {
	return fmt.Sprintf("otp:reset:%s", email)
}

// ResetOTPAttemptsKey returns the cache key for OTP verification attempts
func (r *CacheKeyStruct) ResetOTPAttemptsKey(email string) string {
	return fmt.Sprintf("otp:reset:%s:attempts", email)
}

// ResetTicketKey returns the cache key for a verified reset ticket
func (r *CacheKeyStruct) ResetTicketKey(email string) string {
	return fmt.Sprintf("otp:reset:%s:ticket", email)
}

// AttendanceChannel returns the Redis PubSub channel for attendance updates
func (r *CacheKeyStruct) AttendanceChannel() string {
	return "attendance:updates"
}

var CacheKey = NewCacheKeyStruct()
