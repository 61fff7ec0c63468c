package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "interview", "interview"},
		{"slashes", "a/b\\c", "a-b-c"},
		{"colon and star", "take:2*final", "take-2-final"},
		{"removed chars", `what?"<>|`, "what"},
		{"whitespace", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStem(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "/media/interview.wav", "interview"},
		{"no extension", "/media/interview", "interview"},
		{"unsafe chars", "/media/take:2.mp3", "take-2"},
		{"dotfile", "/media/.hidden", "output"},
		{"empty", "", "output"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Stem(tc.in); got != tc.want {
				t.Fatalf("Stem(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exact", 5, "exact"},
		{"truncated", "a longer sentence", 10, "a longe..."},
		{"tiny max", "abcdef", 2, "ab"},
		{"zero", "abc", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.max); got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}
