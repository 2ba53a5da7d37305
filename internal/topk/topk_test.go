package topk

import (
	"testing"

	"github.com/dnsscience/dnsriskscan/internal/classifier"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

func res(name string, score int) classifier.Result {
	return classifier.Result{Record: record.Record{Name: name}, Score: score}
}

func TestAggregator_KeepsOnlyTopN(t *testing.T) {
	a := New(2)
	a.Add(res("a", 10))
	a.Add(res("b", 90))
	a.Add(res("c", 50))
	a.Add(res("d", 5))

	top := a.Top()
	if len(top) != 2 {
		t.Fatalf("len(Top()) = %d, want 2", len(top))
	}
	if top[0].Score != 90 || top[1].Score != 50 {
		t.Fatalf("top = %+v, want [90, 50]", top)
	}
}

func TestAggregator_StableOrderOnTies(t *testing.T) {
	a := New(3)
	a.Add(res("first", 50))
	a.Add(res("second", 50))
	a.Add(res("third", 50))

	top := a.Top()
	if top[0].Record.Name != "first" || top[1].Record.Name != "second" || top[2].Record.Name != "third" {
		t.Fatalf("top order = %v, want first,second,third", []string{top[0].Record.Name, top[1].Record.Name, top[2].Record.Name})
	}
}

func TestAggregator_ZeroNKeepsNothing(t *testing.T) {
	a := New(0)
	a.Add(res("a", 100))
	if a.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", a.Len())
	}
	if len(a.Top()) != 0 {
		t.Fatalf("Top() non-empty for n=0")
	}
}

func TestAggregator_FewerThanNResults(t *testing.T) {
	a := New(10)
	a.Add(res("a", 1))
	a.Add(res("b", 2))

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
}
