package service

import (
	"context"
	"errors"
	"testing"
)

type fake struct {
	name  string
	calls *[]string
	err   error
}

func (f fake) Run() { *f.calls = append(*f.calls, "run "+f.name) }
func (f fake) Shutdown(context.Context) error {
	*f.calls = append(*f.calls, "stop "+f.name)
	return f.err
}
func (f fake) String() string { return f.name }

func TestGroup(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	g := Group{}
	g.Add(fake{name: "a", calls: &calls}, "not runnable", fake{name: "b", calls: &calls, err: boom})
	g.Start()
	err := g.Shutdown(context.Background())

	want := []string{"run a", "run b", "stop b", "stop a"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", calls, want)
			break
		}
	}
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown() err = %v, want wrapped %v", err, boom)
	}
}
