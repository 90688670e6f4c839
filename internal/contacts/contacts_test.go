package contacts

import (
	"context"
	"strings"
	"testing"
)

func TestStaticDirectory(t *testing.T) {
	t.Parallel()

	dir := NewStatic([]string{"Alice", "Bob"})
	ctx := context.Background()

	names, err := dir.Names(ctx)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Bob" {
		t.Errorf("Names = %v, want [Alice Bob]", names)
	}

	// The returned slice is a copy: mutating it must not affect the
	// directory.
	names[0] = "Mallory"
	names2, _ := dir.Names(ctx)
	if names2[0] != "Alice" {
		t.Errorf("directory mutated through returned slice: %v", names2)
	}

	dir.Replace([]string{"Carol"})
	names3, _ := dir.Names(ctx)
	if len(names3) != 1 || names3[0] != "Carol" {
		t.Errorf("after Replace: %v, want [Carol]", names3)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	doc := `
contacts:
  - Alice Smith
  - Alicia Nunez
  - Bob
`
	dir, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	names, err := dir.Names(context.Background())
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	want := []string{"Alice Smith", "Alicia Nunez", "Bob"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	doc := `
contacts:
  - Alice
frieds:
  - Bob
`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unknown top-level key")
	}
}
