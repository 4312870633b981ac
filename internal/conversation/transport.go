package conversation

import "context"

// ReporterProfile is the chat-platform identity attached to an inbound
// event.
type ReporterProfile struct {
	FirstName string
	LastName  string
	Username  string
}

// Inbound is one user event delivered by the chat transport: plain
// text, a binary attachment, or a command.
type Inbound struct {
	UserID      int64
	Text        string
	PhotoFileID string
	Profile     ReporterProfile
}

// Keyboard selects which reply keyboard the transport renders for the
// user's next turn.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardCancelOnly
	KeyboardEvidence
	KeyboardRemove
)

// Replier sends a reply to the user, with optional controls for the
// next turn.
type Replier interface {
	Reply(ctx context.Context, userID int64, text string, keyboard Keyboard) error
}

// FileResolver turns an attachment reference into a retrievable URL.
// Fetching is a suspension point; callers must re-acquire the session
// lock afterwards instead of trusting pre-fetch state.
type FileResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}
