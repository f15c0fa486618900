package ref

import (
	"reflect"
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fragment marker", input: "#id1", want: "id1"},
		{name: "bare identifier", input: "id1", want: "id1"},
		{name: "empty", input: "", want: ""},
		{name: "only marker", input: "#", want: ""},
		{name: "single leading marker removed", input: "##id1", want: "#id1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.input); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "two fragments", input: "#id1 #id2", want: []string{"id1", "id2"}},
		{name: "mixed", input: "id1 #id2 id3", want: []string{"id1", "id2", "id3"}},
		{name: "single", input: "#id1", want: []string{"id1"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
