package store

import (
	"reflect"
	"testing"
)

func TestGrouperKeepsFirstSeenOrder(t *testing.T) {
	g := newGrouper[int64, string]()
	rows := []struct {
		parent int64
		child  string
	}{
		{2, "b"}, {1, "x"}, {2, "a"}, {2, "b"}, {1, "y"}, {1, "x"},
	}
	for _, r := range rows {
		g.add(r.parent, r.child)
	}

	if got := g.parents(); !reflect.DeepEqual(got, []int64{2, 1}) {
		t.Fatalf("unexpected parent order: %v", got)
	}
	if got := g.get(2); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("unexpected children for 2: %v", got)
	}
	if got := g.get(1); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("unexpected children for 1: %v", got)
	}
}

func TestGrouperTouchWithoutChildren(t *testing.T) {
	g := newGrouper[int64, int64]()
	if !g.touch(7) {
		t.Fatalf("first touch must report a new parent")
	}
	if g.touch(7) {
		t.Fatalf("second touch must not report a new parent")
	}
	got := g.get(7)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil children, got %#v", got)
	}
	if got := g.get(8); got == nil || len(got) != 0 {
		t.Fatalf("expected empty children for unknown parent, got %#v", got)
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]int64{5, 1, 5, 3, 1})
	if !reflect.DeepEqual(got, []int64{1, 3, 5}) {
		t.Fatalf("unexpected result: %v", got)
	}
	if got := uniqueSorted(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
