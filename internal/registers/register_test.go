package registers

import (
	"strings"
	"testing"
)

func TestGroupSet(t *testing.T) {
	g := NewGroupSet("main", "grid")

	if !g.Has("main") || g.Has("status") {
		t.Errorf("Has() wrong for %v", g.Sorted())
	}
	if !g.HasAll("grid", "main") || g.HasAll("grid", "status") {
		t.Errorf("HasAll() wrong for %v", g.Sorted())
	}
	if !g.HasAll() {
		t.Error("HasAll() with no tags = false, want true")
	}
	if got := strings.Join(g.Sorted(), ","); got != "grid,main" {
		t.Errorf("Sorted() = %q, want grid,main", got)
	}
}
