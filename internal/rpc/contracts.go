package rpc

import "time"

// Payloads exchanged between the gateway and the auth worker

type LocalLoginRequest struct {
	Email string `json:"email"`
}

type LocalRegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type OAuthLoginRequest struct {
	Code string `json:"code"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type UserInfoRequest struct {
	IdentityRef string `json:"identityRef"`
}

// MessageReply acknowledges an operation with a user message
type MessageReply struct {
	Message string `json:"message"`
}

// HealthReply is the worker's answer to a health check
type HealthReply struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
