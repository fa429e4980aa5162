package arena

import "testing"

func TestStorePutGet(t *testing.T) {
	var s Store[string]
	h := s.Put("hello")
	v, ok := s.Get(h)
	if !ok || v != "hello" {
		t.Errorf("Get(%v) = (%q, %v), want (\"hello\", true)", h, v, ok)
	}
}

func TestStoreInvalidHandle(t *testing.T) {
	var s Store[int]
	s.Put(1)
	if _, ok := s.Get(Handle(5)); ok {
		t.Error("expected Get on an out-of-range handle to fail")
	}
}

func TestStoreLenAndAll(t *testing.T) {
	var s Store[int]
	s.Put(1)
	s.Put(2)
	s.Put(3)
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	all := s.All()
	if len(all) != 3 || all[0] != 1 || all[2] != 3 {
		t.Errorf("All() = %v, want [1 2 3]", all)
	}
}

func TestHandlesAreStableAcrossPuts(t *testing.T) {
	var s Store[int]
	h1 := s.Put(10)
	h2 := s.Put(20)
	v1, _ := s.Get(h1)
	v2, _ := s.Get(h2)
	if v1 != 10 || v2 != 20 {
		t.Errorf("got (%d,%d), want (10,20)", v1, v2)
	}
}
