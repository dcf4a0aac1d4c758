package content

import (
	"errors"
	"testing"
)

func TestSlugFromPath(t *testing.T) {
	locales := []string{"en", "de", "hi"}

	cases := []struct {
		name string
		path string
		want string
	}{
		{name: "plain filename", path: "posts/hello-world.md", want: "hello-world"},
		{name: "locale suffix stripped", path: "posts/hello-world.de.md", want: "hello-world"},
		{name: "digits kept", path: "posts/2026-retro.md", want: "2026-retro"},
		{name: "mixed case normalized", path: "posts/Hello World.md", want: "hello-world"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SlugFromPath(tc.path, locales)
			if err != nil {
				t.Fatalf("SlugFromPath(%q): %v", tc.path, err)
			}
			if got != tc.want {
				t.Fatalf("SlugFromPath(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

func TestSlugFromPathRejectsEmptyStem(t *testing.T) {
	if _, err := SlugFromPath("posts/.md", []string{"en"}); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
}
