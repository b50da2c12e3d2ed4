package catalog

import (
	"testing"

	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/google/go-cmp/cmp"
)

func TestParseGroupFilter(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    GroupFilter
		wantErr bool
	}{
		{name: "empty", expr: "", want: nil},
		{name: "only separators", expr: " , & ", want: nil},
		{name: "single group", expr: "main", want: GroupFilter{{"main"}}},
		{name: "alternatives", expr: "main,status", want: GroupFilter{{"main"}, {"status"}}},
		{name: "combination", expr: "main,status&grid", want: GroupFilter{{"main"}, {"status", "grid"}}},
		{name: "spaces trimmed", expr: " main , status & grid ", want: GroupFilter{{"main"}, {"status", "grid"}}},
		{name: "invalid tag", expr: "main,st-atus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGroupFilter(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseGroupFilter(%q) error = nil, want error", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGroupFilter(%q) error = %v", tt.expr, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseGroupFilter(%q) mismatch (-want +got):\n%s", tt.expr, diff)
			}
		})
	}
}

func TestGroupFilter_Match(t *testing.T) {
	f, err := ParseGroupFilter("main,status&grid")
	if err != nil {
		t.Fatalf("ParseGroupFilter() error = %v", err)
	}

	tests := []struct {
		groups []string
		want   bool
	}{
		{[]string{"main"}, true},
		{[]string{"main", "other"}, true},
		{[]string{"status"}, false},
		{[]string{"grid"}, false},
		{[]string{"grid", "status"}, true},
		{[]string{"all"}, false},
	}

	for _, tt := range tests {
		if got := f.Match(registers.NewGroupSet(tt.groups...)); got != tt.want {
			t.Errorf("Match(%v) = %v, want %v", tt.groups, got, tt.want)
		}
	}

	var all GroupFilter
	if !all.Match(registers.NewGroupSet("anything")) {
		t.Error("zero filter does not match")
	}
	if got := f.String(); got != "main,status&grid" {
		t.Errorf("String() = %q", got)
	}
}
