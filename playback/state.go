// SPDX-License-Identifier: EPL-2.0

package playback

import "fmt"

// State is the scheduler phase shared by every emitter session.
type State int

const (
	// Idle has no media loaded.
	Idle State = iota
	// Playing has a current resource per emitter and no successor.
	Playing
	// Ready has the successor loaded for every emitter.
	Ready
	// Transitioning is swapping successors in.
	Transitioning
	// Destroyed is terminal.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Ready:
		return "ready"
	case Transitioning:
		return "transitioning"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is a trigger stamped with the play cycle that armed it.
type Event struct {
	Trigger Trigger
	Cycle   uint64
}

type session struct {
	current   Resource
	next      Resource
	connected bool
	audible   bool
	// queued is set while next is handed to the graph.
	queued bool
}

type loadResult struct {
	id    uint64
	track int
	res   []Resource
	err   error
}

type pendingLoad struct {
	id    uint64
	track int
}
