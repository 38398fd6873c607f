package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sources.json")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `{
		"world": {
			"general": [
				{"name": "BBC", "url": "https://bbc/feed"},
				{"name": "Reuters", "url": "https://reuters/feed"}
			],
			"technology": [
				{"name": "Ars", "url": "https://ars/feed"}
			]
		},
		"us": {
			"general": [
				{"name": "NPR", "url": "https://npr/feed"}
			]
		}
	}`)

	r := LoadCatalog(path)

	if r.Len() != 4 {
		t.Fatalf("Len = %d, want 4", r.Len())
	}

	if got := r.Sources("world", ""); len(got) != 3 {
		t.Errorf("Sources(world) = %d, want 3", len(got))
	}

	if got := r.Sources("", "general"); len(got) != 3 {
		t.Errorf("Sources(general) = %d, want 3", len(got))
	}

	if got := r.Sources("us", "general"); len(got) != 1 || got[0].Name != "NPR" {
		t.Errorf("Sources(us, general) = %+v, want NPR", got)
	}

	if got := r.Sources("", ""); len(got) != 4 {
		t.Errorf("Sources() = %d, want all 4", len(got))
	}
}

func TestLoadCatalogDropsInvalidEntries(t *testing.T) {
	path := writeCatalog(t, `{
		"world": {
			"general": [
				{"name": "BBC", "url": "https://bbc/feed"},
				{"name": "", "url": "https://nameless/feed"},
				{"name": "NoURL", "url": ""}
			]
		}
	}`)

	r := LoadCatalog(path)

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (invalid entries dropped individually)", r.Len())
	}

	if got := r.Sources("", ""); got[0].Name != "BBC" {
		t.Errorf("surviving entry = %q, want BBC", got[0].Name)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	r := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))

	if r.Len() != 0 {
		t.Errorf("Len = %d, want empty registry for missing file", r.Len())
	}

	if got := r.Sources("", ""); len(got) != 0 {
		t.Errorf("Sources on empty registry = %d entries", len(got))
	}
}

func TestLoadCatalogMalformedFile(t *testing.T) {
	path := writeCatalog(t, `{"world": [not json`)

	if r := LoadCatalog(path); r.Len() != 0 {
		t.Errorf("Len = %d, want empty registry for malformed file", r.Len())
	}
}

func TestLoadCatalogStableOrder(t *testing.T) {
	content := `{
		"b-country": {"general": [{"name": "B1", "url": "https://b1"}]},
		"a-country": {"general": [{"name": "A1", "url": "https://a1"}]}
	}`

	path := writeCatalog(t, content)

	first := LoadCatalog(path).Sources("", "")

	for i := 0; i < 5; i++ {
		again := LoadCatalog(path).Sources("", "")

		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("registry order changed between loads: %+v vs %+v", first, again)
			}
		}
	}

	if first[0].Name != "A1" {
		t.Errorf("first source = %q, want countries walked in sorted order", first[0].Name)
	}
}
