package domain

import "time"

// Agent is a client identity string (the User-Agent header) a user has logged in from.
type Agent struct {
	Name      string    `json:"name"`
	IsCurrent bool      `json:"isCurrent"`
	AddedAt   time.Time `json:"added_at"`
}

type AgentStatus string

const (
	AgentNew         AgentStatus = "NEW_AGENT"
	AgentNotVerified AgentStatus = "NOT_VERIFIED_AGENT"
	AgentVerified    AgentStatus = "VERIFIED_AGENT"
)

// ClassifyAgent reports how much the presented identity is trusted for this user.
// Only the first entry with a matching name counts.
func ClassifyAgent(agents []Agent, identity string) AgentStatus {
	i := FindAgent(agents, identity)
	switch {
	case i < 0:
		return AgentNew
	case !agents[i].IsCurrent:
		return AgentNotVerified
	default:
		return AgentVerified
	}
}

// FindAgent returns the index of the first agent named identity, or -1.
func FindAgent(agents []Agent, identity string) int {
	for i := range agents {
		if agents[i].Name == identity {
			return i
		}
	}
	return -1
}
