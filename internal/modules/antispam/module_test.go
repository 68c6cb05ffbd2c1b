package antispam

import (
	"testing"
	"time"
)

func TestBurstFlagsAtThreshold(t *testing.T) {
	tracker := New(3*time.Second, 5)
	base := time.Now()

	for i := 0; i < 4; i++ {
		if tracker.Classify("u1", base.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatalf("message %d flagged below threshold", i+1)
		}
	}
	if !tracker.Classify("u1", base.Add(500*time.Millisecond)) {
		t.Fatal("5th rapid message should be spam")
	}
}

func TestCounterResetsAfterFlag(t *testing.T) {
	tracker := New(3*time.Second, 5)
	base := time.Now()

	for i := 0; i < 5; i++ {
		tracker.Classify("u1", base.Add(time.Duration(i)*100*time.Millisecond))
	}
	// Counter was zeroed on the flag: the next rapid message starts a new burst.
	if tracker.Classify("u1", base.Add(600*time.Millisecond)) {
		t.Fatal("message right after a flag should not be spam")
	}
	for i := 0; i < 3; i++ {
		if tracker.Classify("u1", base.Add(time.Duration(700+i*100)*time.Millisecond)) {
			t.Fatal("flagged before a fresh full burst accumulated")
		}
	}
	if !tracker.Classify("u1", base.Add(1100*time.Millisecond)) {
		t.Fatal("fresh burst of 5 should flag again")
	}
}

func TestGapResetsBurst(t *testing.T) {
	tracker := New(3*time.Second, 5)
	base := time.Now()

	for i := 0; i < 4; i++ {
		tracker.Classify("u1", base.Add(time.Duration(i)*100*time.Millisecond))
	}
	// Gap past the window: burst restarts at 1 regardless of prior count.
	if tracker.Classify("u1", base.Add(5*time.Second)) {
		t.Fatal("message after a quiet gap should not be spam")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	tracker := New(3*time.Second, 5)
	base := time.Now()

	for i := 0; i < 4; i++ {
		tracker.Classify("u1", base.Add(time.Duration(i)*100*time.Millisecond))
	}
	if tracker.Classify("u2", base.Add(400*time.Millisecond)) {
		t.Fatal("u2's first message must not inherit u1's burst")
	}
}
