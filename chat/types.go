package chat

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn as the UI sees it. It is never modified after it has
// been appended to the conversation.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is the id-free form of a Message sent to the completion API.
type Turn struct {
	Role    Role   `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Turns strips ids, keeping conversation order.
func Turns(msgs []Message) []Turn {
	out := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

type FailureKind string

const (
	KindNone        FailureKind = ""
	KindAuth        FailureKind = "auth"
	KindQuota       FailureKind = "quota"
	KindUnavailable FailureKind = "unavailable"
	KindTimeout     FailureKind = "timeout"
	KindMalformed   FailureKind = "malformed"
	KindNetwork     FailureKind = "network"
	KindAPI         FailureKind = "api"
	KindInvalid     FailureKind = "invalid"
)

// Outcome is the normalized result of one completion call. Fallback asks the
// caller to retry once with the fast model instead of surfacing Error.
type Outcome struct {
	Success  bool        `json:"success"`
	Content  string      `json:"content,omitempty"`
	Error    string      `json:"error,omitempty"`
	Fallback bool        `json:"fallback,omitempty"`
	Kind     FailureKind `json:"kind,omitempty"`
}

func Succeeded(content string) Outcome {
	return Outcome{Success: true, Content: content}
}

func Failed(kind FailureKind, msg string, fallback bool) Outcome {
	return Outcome{Error: msg, Fallback: fallback, Kind: kind}
}

// KeyProbe is what the gateway reports about its credential.
type KeyProbe struct {
	Configured bool   `json:"configured"`
	KeyPrefix  string `json:"keyPrefix,omitempty"`
}

type KeyStatus struct {
	Configured bool   `json:"configured"`
	Message    string `json:"message"`
}

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseRetrying   Phase = "retrying"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// State is a point-in-time copy of everything a renderer needs.
type State struct {
	Messages  []Message `json:"messages"`
	Input     string    `json:"input"`
	Busy      bool      `json:"busy"`
	Phase     Phase     `json:"phase"`
	Error     string    `json:"error,omitempty"`
	Model     string    `json:"model"`
	KeyStatus KeyStatus `json:"keyStatus"`
	Theme     Theme     `json:"theme"`
}
