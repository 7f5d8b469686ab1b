package schema

import "testing"

func TestNewResource(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		want  Resource
		valid bool
	}{
		{"simple", "/a.txt", "/a.txt", true},
		{"nested", "/src/main.go", "/src/main.go", true},
		{"redundant-slashes", "/src//pkg/", "/src/pkg", true},
		{"dot-segments", "/src/./pkg/../main.go", "/src/main.go", true},
		{"backslashes", `\src\main.go`, "/src/main.go", true},
		{"whitespace", "  /a.txt  ", "/a.txt", true},
		{"relative", "docs/readme.md", "docs/readme.md", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"dot", ".", "", false},
		{"escape", "../etc/passwd", "", false},
	}

	for _, tc := range cases {
		got, err := NewResource(tc.raw)
		if tc.valid && err != nil {
			t.Fatalf("case %q expected valid, got error: %v", tc.name, err)
		}
		if !tc.valid && err == nil {
			t.Fatalf("case %q expected error, got %q", tc.name, got)
		}
		if tc.valid && got != tc.want {
			t.Fatalf("case %q expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestResourceContains(t *testing.T) {
	cases := []struct {
		name   string
		parent Resource
		child  Resource
		want   bool
	}{
		{"equal", "/src", "/src", true},
		{"nested", "/src", "/src/main.go", true},
		{"deeply-nested", "/src", "/src/pkg/util/io.go", true},
		{"sibling", "/src", "/srcdir/main.go", false},
		{"parent", "/src/pkg", "/src", false},
		{"unrelated", "/src", "/docs/readme.md", false},
		{"empty-parent", "", "/src", false},
		{"empty-child", "/src", "", false},
	}

	for _, tc := range cases {
		if got := tc.parent.Contains(tc.child); got != tc.want {
			t.Fatalf("case %q expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestResourceBase(t *testing.T) {
	if base := Resource("/src/main.go").Base(); base != "main.go" {
		t.Fatalf("expected main.go, got %q", base)
	}
	if base := Resource("").Base(); base != "" {
		t.Fatalf("expected empty base, got %q", base)
	}
}
