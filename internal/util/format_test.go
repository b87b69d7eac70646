package util

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"The Matrix Reloaded", 10, "The Mat..."},
		{"日本語のタイトル", 5, "日本..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"/movies/matrix", 20, "/movies/matrix"},
		{"/movies/1999/the-matrix.mkv", 12, "...atrix.mkv"},
		{"/a/b", 2, "/b"},
	}
	for _, tt := range tests {
		if got := TruncatePath(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncatePath(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got := Join([]string{"Action", " ", "", " Sci-Fi "}, ", ")
	if got != "Action, Sci-Fi" {
		t.Fatalf("Join = %q", got)
	}
	if Join(nil, ", ") != "" {
		t.Fatal("Join(nil) should be empty")
	}
}

func TestOrDash(t *testing.T) {
	if OrDash("  ") != "-" || OrDash("12") != "12" {
		t.Fatal("OrDash mismatch")
	}
}
