package scope

import (
	"fmt"

	"github.com/dshills/studyrag-mcp/pkg/types"
)

// CommandKind identifies a navigation command.
type CommandKind int

const (
	// CmdUseTerm activates a term, clearing any narrower selection.
	CmdUseTerm CommandKind = iota
	// CmdOpenTopic activates a topic within the current term, clearing the
	// title selection.
	CmdOpenTopic
	// CmdSelectTitle adds a title to the active title set.
	CmdSelectTitle
	// CmdDeselectTitle removes a title from the active title set.
	CmdDeselectTitle
	// CmdClearScope resets to the unconstrained scope.
	CmdClearScope
)

// Command is one navigation action against a scope.
type Command struct {
	Kind  CommandKind
	Value string // Term, topic, or title name; unused for CmdClearScope
}

// Apply returns the scope produced by running cmd against s. The input scope
// is never mutated. Narrowing commands clear selections below their level:
// switching terms drops the topic and titles, switching topics drops the
// titles.
func Apply(s types.ScopeState, cmd Command) (types.ScopeState, error) {
	switch cmd.Kind {
	case CmdUseTerm:
		if cmd.Value == "" {
			return s, fmt.Errorf("use term: empty term name")
		}
		if cmd.Value == s.Term {
			return s, nil
		}
		return types.ScopeState{Term: cmd.Value}, nil

	case CmdOpenTopic:
		if cmd.Value == "" {
			return s, fmt.Errorf("open topic: empty topic name")
		}
		if s.Term == "" {
			return s, fmt.Errorf("open topic: no active term")
		}
		if cmd.Value == s.Topic {
			return s, nil
		}
		return types.ScopeState{Term: s.Term, Topic: cmd.Value}, nil

	case CmdSelectTitle:
		if cmd.Value == "" {
			return s, fmt.Errorf("select title: empty title name")
		}
		for _, t := range s.Titles {
			if t == cmd.Value {
				return s, nil
			}
		}
		out := s
		out.Titles = append(append([]string{}, s.Titles...), cmd.Value)
		return out, nil

	case CmdDeselectTitle:
		if cmd.Value == "" {
			return s, fmt.Errorf("deselect title: empty title name")
		}
		out := s
		out.Titles = nil
		for _, t := range s.Titles {
			if t != cmd.Value {
				out.Titles = append(out.Titles, t)
			}
		}
		return out, nil

	case CmdClearScope:
		return types.ScopeState{}, nil
	}

	return s, fmt.Errorf("unknown scope command %d", cmd.Kind)
}
