package apperrors

var (
	// Send-pipeline gates, in gate order.
	ErrUnauthenticated       = New(CodeUnauthenticated, "user is not logged in")
	ErrInvalidPhone          = New(CodeInvalidPhone, "phone number format is invalid")
	ErrSelfSendDenied        = New(CodeSelfSendDenied, "cannot send a blessing to yourself")
	ErrInvalidContent        = New(CodeInvalidContent, "blessing content must be 1-80 characters")
	ErrDisallowedContent     = New(CodeDisallowedContent, "blessing content contains disallowed terms")
	ErrSenderQuotaExceeded   = New(CodeSenderQuotaExceeded, "daily send limit reached")
	ErrReceiverQuotaExceeded = New(CodeReceiverQuotaExceeded, "receiver has reached the daily limit")
	ErrDeliveryFailed        = New(CodeDeliveryFailed, "sms delivery failed, please retry later")

	ErrUserNotFound    = New(CodeNotFound, "user not found")
	ErrMessageNotFound = New(CodeNotFound, "blessing message not found")
	ErrInvalidCode     = New(CodeInvalidArgument, "verification code is invalid or expired")
	ErrInvalidRefresh  = New(CodeUnauthenticated, "invalid refresh token")
)

func Storage(cause error) error {
	return Wrap(CodeStorage, "storage unavailable", cause)
}

func IdentityProvider(message string, cause error) error {
	return Wrap(CodeIdentityProvider, message, cause)
}
