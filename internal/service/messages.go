package service

// User-facing result messages. Callers branch on Result.Success only; these
// strings are for display.
const (
	MsgSignUpSuccess   = "Account created successfully. Please sign in."
	MsgSignUpFailed    = "Failed to create account. Please try again."
	MsgSignInSuccess   = "Signed in successfully"
	MsgSignInFailed    = "Failed to log into account. Please try again."
	MsgAccountNotFound = "User account not found. Please sign up first."
	MsgInvalidToken    = "Invalid authentication token. Please sign in again."
	MsgExpiredToken    = "Authentication token expired. Please sign in again."
)
