package rpc

// Subjects served by the auth worker
const (
	SubjectLocalLogin     = "auth.local-login"
	SubjectLocalRegister  = "auth.local-register"
	SubjectVerifyOTP      = "auth.verify-otp"
	SubjectGoogleLogin    = "auth.google-login"
	SubjectAppleLogin     = "auth.apple-login"
	SubjectAuthenticate   = "auth.authenticate"
	SubjectGetUserInfo    = "auth.get-user-info"
	SubjectLogout         = "auth.logout"
	SubjectRefreshSession = "auth.refresh-session"
	SubjectHealthCheck    = "service.health-check"
)
