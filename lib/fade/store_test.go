package fade

import (
	"slices"
	"testing"
)

func TestStoreClamps(t *testing.T) {
	s := NewStore(4)
	if err := s.Set(0, 150); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(1, -3); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(); !slices.Equal(got, []int{100, 0, 0, 0}) {
		t.Errorf("got %v", got)
	}
	if err := s.ReplaceAll([]int{-1, 50, 101, 100}); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(); !slices.Equal(got, []int{0, 50, 100, 100}) {
		t.Errorf("got %v", got)
	}
}

func TestStoreRejectsBadShape(t *testing.T) {
	s := NewStore(4)
	if err := s.Set(4, 10); err == nil {
		t.Error("expected error for index 4")
	}
	if err := s.ReplaceAll([]int{1, 2}); err == nil {
		t.Error("expected error for short vector")
	}
}

func TestStoreGetIsCopy(t *testing.T) {
	s := NewStore(2)
	v := s.Get()
	v[0] = 99
	if s.Get()[0] != 0 {
		t.Error("snapshot aliases store")
	}
}
