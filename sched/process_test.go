package sched

import (
	"testing"

	"corvus/naming"
)

func TestNewProcessAllocatesDistinctPids(t *testing.T) {
	root := naming.NewRootDirectory()
	a := NewProcess(nil, nil, root)
	b := NewProcess(nil, nil, root)
	if a.ID == b.ID {
		t.Errorf("expected distinct process IDs; both got %d", a.ID)
	}
}

func TestProcessAddRemoveThread(t *testing.T) {
	root := naming.NewRootDirectory()
	p := NewProcess(nil, nil, root)
	th := &Thread{ID: 1}
	p.addThread(th)
	if len(p.threads) != 1 {
		t.Fatalf("expected one tracked thread; got %d", len(p.threads))
	}
	last := p.removeThread(th.ID)
	if !last {
		t.Error("expected removing the only thread to report last=true")
	}
	if len(p.threads) != 0 {
		t.Errorf("expected no tracked threads after removal; got %d", len(p.threads))
	}
}

func TestProcessExitStatusSetOnce(t *testing.T) {
	root := naming.NewRootDirectory()
	p := NewProcess(nil, nil, root)
	if _, exited := p.ExitStatus(); exited {
		t.Fatal("expected a fresh process to report not-yet-exited")
	}
	p.SetExitStatus(3)
	p.SetExitStatus(9) // must be ignored: the first exit status wins
	status, exited := p.ExitStatus()
	if !exited || status != 3 {
		t.Errorf("expected the first SetExitStatus call to stick (3); got status=%d exited=%v", status, exited)
	}
}
