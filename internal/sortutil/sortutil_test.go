package sortutil

import (
	"reflect"
	"testing"
)

func TestUniqueInOrder(t *testing.T) {
	got := UniqueInOrder([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueInOrder = %v, want %v", got, want)
	}
	if got := UniqueInOrder(nil); len(got) != 0 {
		t.Fatalf("UniqueInOrder(nil) = %v, want empty", got)
	}
}
