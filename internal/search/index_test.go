package search

import (
	"reflect"
	"testing"
)

func TestQueryMatchesSubstring(t *testing.T) {
	idx := New()
	idx.Add("1", "GitHub Login")
	idx.Add("2", "Bank of Examples")
	idx.Add("3", "github deploy key")

	got := idx.Query("GITHUB")
	want := []string{"1", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Query = %v, want %v", got, want)
	}

	if got := idx.Query("   "); len(got) != 3 {
		t.Fatalf("blank query should list everything, got %v", got)
	}
	if got := idx.Query("nothing"); len(got) != 0 {
		t.Fatalf("unexpected matches: %v", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	idx := New()
	idx.Add("1", "one")
	idx.Add("2", "two")
	idx.Remove("1")
	if got := idx.Query("one"); len(got) != 0 {
		t.Fatalf("removed entry still matches: %v", got)
	}
	idx.Clear()
	if got := idx.Query(""); len(got) != 0 {
		t.Fatalf("cleared index still has entries: %v", got)
	}
}
