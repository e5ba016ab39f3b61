package convo

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one recorded utterance in a channel's conversation window.
// Turns are immutable once appended.
type Turn struct {
	Role Role
	Text string
}
