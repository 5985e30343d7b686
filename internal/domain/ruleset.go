// internal/domain/ruleset.go
package domain

import "time"

// RuleSetType discriminates rule-set variants in stored records and on
// the wire. Dispatch matches on this tag, never on reflection.
type RuleSetType string

const (
	RuleSetConnectFour RuleSetType = "connect_four"
)

// RuleSet is the sealed set of game variants the hub coordinates.
// Connect Four is the only member today; the interface exists so that
// new rule sets only touch the variant files.
type RuleSet interface {
	Type() RuleSetType
	// MaxPlayers is the roster size a game starts with and the cap on
	// lobby membership.
	MaxPlayers() int
	// MinPlayers is the floor below which a running game ends.
	MinPlayers() int
}

// ConnectFourRuleSet parameterizes a Connect Four match.
type ConnectFourRuleSet struct {
	TimeForEachPlayer time.Duration
}

func (ConnectFourRuleSet) Type() RuleSetType { return RuleSetConnectFour }
func (ConnectFourRuleSet) MaxPlayers() int   { return 2 }
func (ConnectFourRuleSet) MinPlayers() int   { return 2 }
