package diag

import (
	"testing"

	"perlscope/internal/source"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(SynUnexpectedToken, source.Span{}, "one")) {
		t.Fatal("first add rejected")
	}
	if !b.Add(NewError(SynUnexpectedToken, source.Span{}, "two")) {
		t.Fatal("second add rejected")
	}
	if b.Add(NewError(SynUnexpectedToken, source.Span{}, "three")) {
		t.Fatal("cap not enforced")
	}
	if b.Len() != 2 {
		t.Fatalf("len: %d", b.Len())
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, SemUnusedVariable, source.Span{File: 0, Start: 20, End: 25}, "w"))
	b.Add(New(SevError, SynUnexpectedToken, source.Span{File: 0, Start: 5, End: 6}, "e"))
	b.Add(New(SevError, SemUnresolvedIdentifier, source.Span{File: 0, Start: 5, End: 6}, "e2"))
	b.Sort()

	items := b.Items()
	if items[0].Primary.Start != 5 || items[1].Primary.Start != 5 || items[2].Primary.Start != 20 {
		t.Fatalf("span order wrong: %+v", items)
	}
	// Same span: lower code first.
	if items[0].Code != SynUnexpectedToken {
		t.Errorf("code tiebreak: got %v", items[0].Code)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{File: 1, Start: 3, End: 7}
	b.Add(NewError(SemUnresolvedVariable, sp, "x"))
	b.Add(NewError(SemUnresolvedVariable, sp, "x"))
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("dedup: %d", b.Len())
	}
}
