package fileutil

import (
	"reflect"
	"testing"
)

func TestExcluded(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		excludes []string
		want     bool
	}{
		{"no excludes", "src/main.go", nil, false},
		{"substring match", "node_modules/pkg/index.js", []string{"node_modules"}, true},
		{"any of several", "target/debug/app", []string{"vendor", "target"}, true},
		{"no match", "src/main.go", []string{"vendor", "target"}, false},
		{"literal not glob", "src/main.go", []string{"*.go"}, false},
		{"matches inside file name", "docs/readme.md", []string{"read"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excluded(tt.rel, tt.excludes); got != tt.want {
				t.Errorf("Excluded(%q, %v) = %v, want %v", tt.rel, tt.excludes, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"vendor", []string{"vendor"}},
		{"vendor, target ,,dist", []string{"vendor", "target", "dist"}},
	}

	for _, tt := range tests {
		got := ParseList(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseList(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}
