package neat

import (
	"errors"
	"fmt"
)

// ErrUnresolvedInnovation is returned when a structural mutation reaches a
// genome before its numbers were resolved against a History.
var ErrUnresolvedInnovation = errors.New("innovation has not been resolved")

// History is the append-only log of every structural innovation of a run,
// together with the counters that hand out new connection and node numbers.
// It is owned by the simulation and is not safe for concurrent use.
type History struct {
	ConnectionCount int // Next unused connection number.
	NodeCount       int // Next unused node number.

	innovations []*Mutation
}

// NewHistory creates an empty history whose counters start at the given numbers.
func NewHistory(nextConnection, nextNode int) *History {
	return &History{
		ConnectionCount: nextConnection,
		NodeCount:       nextNode,
	}
}

// Resolve assigns concrete numbers to an innovation. If an earlier innovation
// has the same structure its numbers are copied and reused is true; otherwise
// fresh numbers are taken from the counters and m is appended to the history.
// Non-innovation mutations are left untouched.
func (h *History) Resolve(m *Mutation) (reused bool, err error) {
	if !m.IsInnovation() {
		return false, nil
	}
	if err := validateInnovation(m); err != nil {
		return false, err
	}

	if past := h.find(m); past != nil {
		m.configure(past)
		return true, nil
	}

	h.ConnectionCount, h.NodeCount = m.assign(h.ConnectionCount, h.NodeCount)
	h.innovations = append(h.innovations, m)
	return false, nil
}

// find scans the history in insertion order for the first innovation that
// matches m structurally. A connection matches any earlier innovation that
// introduced the same (src, dst) pair, including either half of a node split.
func (h *History) find(m *Mutation) *Mutation {
	key := m.Key()
	for _, past := range h.innovations {
		switch key.Kind {
		case ConnectionAdd:
			for _, c := range past.connections() {
				if c.Pair() == key.Pair {
					return past
				}
			}
		case NodeSplit:
			if past.Kind == NodeSplit && past.SplitNumber == key.Split {
				return past
			}
		}
	}
	return nil
}

func validateInnovation(m *Mutation) error {
	switch m.Kind {
	case ConnectionAdd:
		if m.Connection == nil {
			return fmt.Errorf("connection mutation without a connection")
		}
		if m.Connection.Src == m.Connection.Dst {
			return fmt.Errorf("connection mutation %d -> %d: source equals destination", m.Connection.Src, m.Connection.Dst)
		}
	case NodeSplit:
		if m.Node == nil || m.DstConnection == nil || m.SrcConnection == nil {
			return fmt.Errorf("node mutation splitting %d is incomplete", m.SplitNumber)
		}
	}
	return nil
}

// Len returns the number of distinct innovations recorded.
func (h *History) Len() int {
	return len(h.innovations)
}

// Innovations returns the recorded innovations in insertion order.
func (h *History) Innovations() []*Mutation {
	out := make([]*Mutation, len(h.innovations))
	copy(out, h.innovations)
	return out
}
