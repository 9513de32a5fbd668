package cart

import "fmt"

// Policy selects whether the cart outlives the process.
type Policy string

const (
	// PolicySession keeps the cart in memory only.
	PolicySession Policy = "session"
	// PolicyPersisted hydrates once on Open and writes through on every mutation.
	PolicyPersisted Policy = "persisted"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySession, PolicyPersisted:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown cart policy %q", s)
	}
}
