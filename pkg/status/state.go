package status

import (
	"sync/atomic"
)

//nolint:recvcheck // String() uses value receiver (called on State values), Get/Set use pointer receivers (atomic ops)
type State int32

const (
	Initial State = iota
	SchemaResolved
	FiltersResolved
	Counted
	Confirmed
	Assembled
	Written
	Failed
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case SchemaResolved:
		return "schemaResolved"
	case FiltersResolved:
		return "filtersResolved"
	case Counted:
		return "counted"
	case Confirmed:
		return "confirmed"
	case Assembled:
		return "assembled"
	case Written:
		return "written"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s *State) Get() State {
	return State(atomic.LoadInt32((*int32)(s)))
}

func (s *State) Set(newState State) {
	atomic.StoreInt32((*int32)(s), int32(newState))
}
