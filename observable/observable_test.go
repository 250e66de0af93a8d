package observable

import "testing"

func TestSubscribeBeforeFirstSet(t *testing.T) {
	v := New[int]()

	var got []int
	v.Subscribe(func(n int) { got = append(got, n) })
	if len(got) != 0 {
		t.Fatalf("callback fired before any value was set: %v", got)
	}

	v.Set(1)
	v.Set(2)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestSubscribeReceivesCurrentValueImmediately(t *testing.T) {
	v := New[string]()
	v.Set("hello")

	var got []string
	v.Subscribe(func(s string) { got = append(got, s) })
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("late subscriber must see the current value, got %v", got)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	v := New[int]()
	v.Set(1)

	var got []int
	cancel := v.Subscribe(func(n int) { got = append(got, n) })
	cancel()
	cancel() // idempotent

	v.Set(2)
	if len(got) != 1 {
		t.Fatalf("cancelled subscriber received a value: %v", got)
	}
}

func TestGet(t *testing.T) {
	v := New[int]()
	if _, ok := v.Get(); ok {
		t.Fatalf("Get must report absent before the first Set")
	}
	v.Set(42)
	if got, ok := v.Get(); !ok || got != 42 {
		t.Fatalf("Get = %d, %t; want 42, true", got, ok)
	}
}

func TestSetFromCallbackDoesNotDeadlock(t *testing.T) {
	v := New[int]()
	var last int
	v.Subscribe(func(n int) {
		last = n
		if n == 1 {
			v.Set(2)
		}
	})
	v.Set(1)
	if last != 2 {
		t.Fatalf("last = %d, want 2", last)
	}
}
