package apperrors

type Code string

const (
	CodeUnknown               Code = "UNKNOWN"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeNotFound              Code = "NOT_FOUND"
	CodeUnauthenticated       Code = "UNAUTHENTICATED"
	CodeInvalidPhone          Code = "INVALID_PHONE"
	CodeSelfSendDenied        Code = "SELF_SEND_DENIED"
	CodeInvalidContent        Code = "INVALID_CONTENT"
	CodeDisallowedContent     Code = "DISALLOWED_CONTENT"
	CodeSenderQuotaExceeded   Code = "SENDER_QUOTA_EXCEEDED"
	CodeReceiverQuotaExceeded Code = "RECEIVER_QUOTA_EXCEEDED"
	CodeDeliveryFailed        Code = "DELIVERY_FAILED"
	CodeIdentityProvider      Code = "IDENTITY_PROVIDER_ERROR"
	CodeStorage               Code = "STORAGE_ERROR"
)
