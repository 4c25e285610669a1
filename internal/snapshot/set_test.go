package snapshot

import (
	"slices"
	"testing"
)

func TestSetPutKeepsOrderAndOldVersions(t *testing.T) {
	t.Parallel()

	s0 := Empty[string]()
	s1 := s0.Put("a", "alpha")
	s2 := s1.Put("b", "bravo")
	s3 := s2.Put("a", "ALPHA")

	if got := s3.Items(); !slices.Equal(got, []string{"ALPHA", "bravo"}) {
		t.Errorf("Items() = %v, want [ALPHA bravo]", got)
	}
	if v, _ := s2.Get("a"); v != "alpha" {
		t.Errorf("older set Get(a) = %q, want %q", v, "alpha")
	}
	if s0.Len() != 0 || s1.Len() != 1 {
		t.Errorf("older sets changed: len(s0)=%d len(s1)=%d", s0.Len(), s1.Len())
	}
	for i, s := range []*Set[string]{s0, s1, s2, s3} {
		if s.Version() != uint64(i) {
			t.Errorf("version of s%d = %d, want %d", i, s.Version(), i)
		}
	}
}

func TestSetRemove(t *testing.T) {
	t.Parallel()

	s := Empty[int]().Put("a", 1).Put("b", 2).Put("c", 3)

	next, ok := s.Remove("b")
	if !ok {
		t.Fatal("Remove(b) = false, want true")
	}
	if got := next.Items(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("Items() = %v, want [1 3]", got)
	}
	if v, ok := next.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v, want 3, true", v, ok)
	}
	if next.Version() != s.Version()+1 {
		t.Errorf("version = %d, want %d", next.Version(), s.Version()+1)
	}
	if !s.Has("b") {
		t.Error("Remove changed the original set")
	}

	same, ok := next.Remove("missing")
	if ok || same != next {
		t.Error("Remove of an unknown id should return the same set and false")
	}

	// ids after the removed one must still resolve after a later Put
	after := next.Put("c", 30)
	if got := after.Items(); !slices.Equal(got, []int{1, 30}) {
		t.Errorf("Items() after replace = %v, want [1 30]", got)
	}
}

func TestSetItemsIsACopy(t *testing.T) {
	t.Parallel()

	s := Empty[int]().Put("a", 1)
	items := s.Items()
	items[0] = 99
	if v, _ := s.Get("a"); v != 1 {
		t.Errorf("Get(a) = %d after mutating Items(), want 1", v)
	}
}

func TestSetSelectAndCount(t *testing.T) {
	t.Parallel()

	s := Empty[int]()
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		s = s.Put(id, i)
	}
	even := func(v int) bool { return v%2 == 0 }

	if got := s.Select(even); !slices.Equal(got, []int{0, 2, 4}) {
		t.Errorf("Select(even) = %v, want [0 2 4]", got)
	}
	if got := s.Count(even); got != 3 {
		t.Errorf("Count(even) = %d, want 3", got)
	}
}
