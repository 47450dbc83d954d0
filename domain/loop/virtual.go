package loop

import (
	"sort"
	"time"
)

// Virtual is a deterministic Loop driven by Advance. It is not safe for
// concurrent use; tests drive it from a single goroutine.
//
// Go runs work immediately unless Hold is set, in which case the work is
// parked until Release. Posted callbacks run when the clock is advanced or
// when Drain is called.
type Virtual struct {
	// Hold parks work passed to Go until Release is called.
	Hold bool

	now    time.Time
	seq    uint64
	timers []*virtualTimer
	posted []func()
	parked []func()
}

// NewVirtual returns a virtual loop whose clock starts at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

type virtualTimer struct {
	due     time.Time
	every   time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

func (t *virtualTimer) Stop() { t.stopped = true }

func (v *Virtual) Now() time.Time { return v.now }

func (v *Virtual) After(d time.Duration, fn func()) Timer {
	if fn == nil {
		return noopTimer{}
	}
	return v.add(d, 0, fn)
}

func (v *Virtual) Every(d time.Duration, fn func()) Timer {
	if fn == nil || d <= 0 {
		return noopTimer{}
	}
	return v.add(d, d, fn)
}

func (v *Virtual) add(d, every time.Duration, fn func()) *virtualTimer {
	v.seq++
	t := &virtualTimer{due: v.now.Add(d), every: every, seq: v.seq, fn: fn}
	v.timers = append(v.timers, t)
	return t
}

func (v *Virtual) Post(fn func()) {
	if fn != nil {
		v.posted = append(v.posted, fn)
	}
}

func (v *Virtual) Go(work func()) {
	if work == nil {
		return
	}
	if v.Hold {
		v.parked = append(v.parked, work)
		return
	}
	work()
}

// Release runs parked work and drains the callbacks it posted.
func (v *Virtual) Release() {
	parked := v.parked
	v.parked = nil
	for _, w := range parked {
		w()
	}
	v.Drain()
}

// Parked reports how much async work is waiting for Release.
func (v *Virtual) Parked() int { return len(v.parked) }

// Drain runs posted callbacks, including ones posted while draining.
func (v *Virtual) Drain() {
	for len(v.posted) > 0 {
		fn := v.posted[0]
		v.posted = v.posted[1:]
		fn()
	}
}

// ActiveTimers reports timers that have not been stopped or fired.
func (v *Virtual) ActiveTimers() int {
	n := 0
	for _, t := range v.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in due order and
// draining posted callbacks after each one.
func (v *Virtual) Advance(d time.Duration) {
	v.Drain()
	target := v.now.Add(d)
	for {
		t := v.next(target)
		if t == nil {
			break
		}
		v.now = t.due
		if t.every > 0 {
			t.due = t.due.Add(t.every)
		} else {
			t.stopped = true
		}
		t.fn()
		v.Drain()
	}
	v.now = target
	v.compact()
}

func (v *Virtual) next(limit time.Time) *virtualTimer {
	v.compact()
	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].due.Equal(v.timers[j].due) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].due.Before(v.timers[j].due)
	})
	if len(v.timers) > 0 && !v.timers[0].due.After(limit) {
		return v.timers[0]
	}
	return nil
}

func (v *Virtual) compact() {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(v.timers); i++ {
		v.timers[i] = nil
	}
	v.timers = live
}
