package source

import (
	"encoding/json"
	"log"
	"os"
	"sort"

	"newsbot/internal/model"
)

// Registry is the static source catalog, loaded once at startup and
// immutable afterwards.
type Registry struct {
	sources []model.SourceDescriptor
}

type catalogSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// catalog file layout: country -> category -> list of sources
type catalog map[string]map[string][]catalogSource

func NewRegistry(sources []model.SourceDescriptor) *Registry {
	return &Registry{sources: sources}
}

// LoadCatalog reads the source catalog file. A missing or malformed file
// yields an empty registry; entries without a name or url are dropped with a
// warning. Downstream components see "no sources" rather than an error.
func LoadCatalog(path string) *Registry {
	data, err := os.ReadFile(path)

	if err != nil {
		log.Printf("ERROR: source catalog read fail: %v", err)
		return &Registry{}
	}

	var cat catalog

	if err := json.Unmarshal(data, &cat); err != nil {
		log.Printf("ERROR: source catalog parse fail: %v", err)
		return &Registry{}
	}

	var sources []model.SourceDescriptor

	for _, country := range sortedKeys(cat) {
		categories := cat[country]

		for _, category := range sortedKeys(categories) {
			for _, entry := range categories[category] {
				if entry.Name == "" || entry.URL == "" {
					log.Printf("WARN: dropping catalog entry without name or url (country=%s category=%s)", country, category)
					continue
				}

				sources = append(sources, model.SourceDescriptor{
					Name:     entry.Name,
					URL:      entry.URL,
					Country:  country,
					Category: category,
				})
			}
		}
	}

	return &Registry{sources: sources}
}

// Sources returns descriptors matching the given country and category. An
// empty string matches everything.
func (r *Registry) Sources(country, category string) []model.SourceDescriptor {
	var out []model.SourceDescriptor

	for _, s := range r.sources {
		if country != "" && s.Country != country {
			continue
		}

		if category != "" && s.Category != category {
			continue
		}

		out = append(out, s)
	}

	return out
}

func (r *Registry) Len() int {
	return len(r.sources)
}

// Catalog entries live in maps, which iterate in random order. Walking keys
// sorted keeps the registry order stable between runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
