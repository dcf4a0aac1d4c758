package generator

import (
	"bytes"
	"testing"
	"time"
)

func TestManifestRoundTrip(t *testing.T) {
	written := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

	manifest := newBuildManifest()
	manifest.GeneratedAt = written
	manifest.setPage(manifestPage{
		Document:   "post:first-light",
		Locale:     "en",
		Route:      "/blog/first-light",
		Output:     "blog/first-light/index.html",
		Template:   "post.html",
		Hash:       "hash-1",
		Checksum:   "sum-1",
		RenderedAt: written,
	})
	manifest.setAsset(manifestAsset{
		Theme:    "default",
		Source:   "assets/site.css",
		Output:   "assets/site.css",
		Checksum: "css-1",
		Size:     128,
		CopiedAt: written,
	})
	manifest.setArtifact(manifestArtifact{
		Path:      "sitemap.xml",
		Category:  "sitemap",
		Checksum:  "map-1",
		WrittenAt: written,
	})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if parsed.Version != manifestFileVersion {
		t.Fatalf("version = %d, want %d", parsed.Version, manifestFileVersion)
	}
	if !parsed.GeneratedAt.Equal(written) {
		t.Fatalf("generated_at = %s", parsed.GeneratedAt)
	}

	page, ok := parsed.lookupPage("post:first-light", "en")
	if !ok {
		t.Fatal("expected page entry to survive the round trip")
	}
	if page.Output != "blog/first-light/index.html" {
		t.Fatalf("page output = %q", page.Output)
	}
	if !parsed.shouldSkipPage("post:first-light", "en", "hash-1", "blog/first-light/index.html") {
		t.Fatal("expected unchanged page to be skippable after reload")
	}

	if _, ok := parsed.lookupAsset("default", "assets/site.css"); !ok {
		t.Fatal("expected asset entry to survive the round trip")
	}
	if !parsed.shouldSkipAsset("default", "assets/site.css", "css-1", "assets/site.css") {
		t.Fatal("expected unchanged asset to be skippable after reload")
	}

	outputs := parsed.outputs()
	want := []string{"assets/site.css", "blog/first-light/index.html", "sitemap.xml"}
	if len(outputs) != len(want) {
		t.Fatalf("outputs = %v, want %v", outputs, want)
	}
	for i := range want {
		if outputs[i] != want[i] {
			t.Fatalf("outputs[%d] = %q, want %q", i, outputs[i], want[i])
		}
	}
}

func TestManifestMarshalIsDeterministic(t *testing.T) {
	build := func() []byte {
		manifest := newBuildManifest()
		manifest.setPage(manifestPage{Document: "page:about", Locale: "de", Output: "de/about/index.html", Hash: "h"})
		manifest.setPage(manifestPage{Document: "page:about", Locale: "en", Output: "about/index.html", Hash: "h"})
		data, err := manifest.marshal()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}
	if !bytes.Equal(build(), build()) {
		t.Fatal("expected identical manifests to serialize identically")
	}
}

func TestParseManifestEmptyInput(t *testing.T) {
	manifest, err := parseManifest(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if manifest.Version != manifestFileVersion {
		t.Fatalf("version = %d", manifest.Version)
	}
	if manifest.Pages == nil || manifest.Assets == nil || manifest.Artifacts == nil {
		t.Fatal("expected initialized maps for empty manifest")
	}
}
