package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple three sentences",
			in:   "One. Two. Three.",
			want: []string{"One.", "Two.", "Three."},
		},
		{
			name: "mixed terminators",
			in:   "Is this it? Yes! It is.",
			want: []string{"Is this it.", "Yes.", "It is."},
		},
		{
			name: "collapses repeated terminators and whitespace",
			in:   "Wait...   what?!  Really.",
			want: []string{"Wait.", "what.", "Really."},
		},
		{
			name: "no terminal punctuation",
			in:   "just one clause",
			want: []string{"just one clause."},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunk(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkIdempotent(t *testing.T) {
	in := "The cat sat. Did it move? It did not!"
	first := Chunk(in)
	second := Chunk(strings.Join(first, " "))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("chunking is not idempotent: %#v vs %#v", first, second)
	}
}
