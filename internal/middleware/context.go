package middleware

// Context keys shared by the middleware chain and handlers.
const (
	ContextKeyRequestID = "request_id"
	ContextKeySubject   = "subject"
	ContextKeyRole      = "role"
)
