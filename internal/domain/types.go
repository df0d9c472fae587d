package domain

type SessionID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode selects the engineering domain a session is tuned for. It determines
// the system instruction and the default request variant on the next send.
type Mode string

const (
	ModeLua   Mode = "lua"   // scripting assistant
	ModeHTML  Mode = "html"  // full-stack / web assistant
	ModeImage Mode = "image" // image synthesis
)

// ValidMode reports whether m is one of the known modes.
func ValidMode(m Mode) bool {
	switch m {
	case ModeLua, ModeHTML, ModeImage:
		return true
	}
	return false
}

// Timestamp is Unix milliseconds at creation time.
type Timestamp = int64
