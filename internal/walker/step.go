package walker

import (
	"espritjobs/internal/jobs"
	"espritjobs/internal/state"
)

// Outcome classifies a single fetch.
type Outcome int

const (
	// Found is a page with a usable record.
	Found Outcome = iota
	// Missing is a redirect away from the job page.
	Missing
	// Empty is a page whose record is mostly placeholders.
	Empty
	// Failed is a transient error while fetching or extracting.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return "unknown"
}

type StopReason string

const (
	NotStopped   StopReason = ""
	StopQuota    StopReason = "quota"
	StopMissing  StopReason = "missing"
	StopEmpty    StopReason = "empty"
	StopFailures StopReason = "failures"
	StopAborted  StopReason = "aborted"
)

type Attempt struct {
	ID      int
	Outcome Outcome
	Record  jobs.Record
	Err     error
}

// State is everything the walk carries from one ID to the next. Step takes
// ownership of Seen and mutates it.
type State struct {
	NextID   int
	Quota    int
	Accepted int
	Seen     state.DuplicateSet
	// MaxFailures ends the walk after that many consecutive failed
	// attempts, zero disables the limit.
	MaxFailures int

	failStreak int
	failStart  int
}

func NewState(start, quota int, seen state.DuplicateSet, maxFailures int) State {
	if seen == nil {
		seen = state.NewDuplicateSet()
	}
	return State{NextID: start, Quota: quota, Seen: seen, MaxFailures: maxFailures}
}

type Verdict struct {
	Appended  bool
	Duplicate bool
	Stop      StopReason
	// Checkpoint is the cursor value to persist, only set when Stop is.
	Checkpoint int
}

func (v Verdict) Stopped() bool {
	return v.Stop != NotStopped
}

// Step applies one attempt to the walk state.
//
// A missing page advances the ID and ends the walk with the missing ID as
// checkpoint. An empty record ends the walk without advancing so the same
// ID is checkpointed and retried next run. Found records are appended unless
// their ID was seen before. Reaching the quota ends the walk at the last
// attempted ID.
func Step(s State, a Attempt) (State, Verdict) {
	switch a.Outcome {
	case Missing:
		s.failStreak = 0
		s.NextID = a.ID + 1
		return s, Verdict{Stop: StopMissing, Checkpoint: a.ID}

	case Empty:
		s.NextID = a.ID
		return s, Verdict{Stop: StopEmpty, Checkpoint: a.ID}

	case Failed:
		if s.failStreak == 0 {
			s.failStart = a.ID
		}
		s.failStreak++
		s.NextID = a.ID + 1
		if s.MaxFailures > 0 && s.failStreak >= s.MaxFailures {
			return s, Verdict{Stop: StopFailures, Checkpoint: s.failStart}
		}
		return s, Verdict{}
	}

	s.failStreak = 0
	s.NextID = a.ID + 1

	var v Verdict
	if s.Seen.Has(a.Record.JobID) {
		v.Duplicate = true
	} else {
		s.Seen.Add(a.Record.JobID)
		s.Accepted++
		v.Appended = true
	}
	if s.Accepted >= s.Quota {
		v.Stop = StopQuota
		v.Checkpoint = a.ID
	}
	return s, v
}
