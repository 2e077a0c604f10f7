package freelist

import (
	"testing"
)

func TestGetAllocatesWhenEmpty(t *testing.T) {
	var fl Freelist

	var allocations int
	allocate := func() interface{} {
		allocations++
		return new(int)
	}

	x := fl.Get(allocate)
	if x == nil {
		t.Fatal("Get returned nil")
	}

	if allocations != 1 {
		t.Errorf("allocations = %d, want 1", allocations)
	}
}

func TestPutThenGetReuses(t *testing.T) {
	var fl Freelist

	allocate := func() interface{} {
		t.Fatal("unexpected allocation")
		return nil
	}

	p := new(int)
	fl.Put(p)

	if got := fl.Get(allocate); got != p {
		t.Errorf("Get = %p, want %p", got, p)
	}
}

func TestLIFOOrder(t *testing.T) {
	var fl Freelist

	a := new(int)
	b := new(int)
	fl.Put(a)
	fl.Put(b)

	allocate := func() interface{} { return nil }

	if got := fl.Get(allocate); got != b {
		t.Error("first Get did not return the most recent Put")
	}

	if got := fl.Get(allocate); got != a {
		t.Error("second Get did not return the older Put")
	}
}
