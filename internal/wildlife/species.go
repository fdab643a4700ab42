package wildlife

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	SpeciesMoose         = "moose"
	SpeciesWhitetailDeer = "whitetail_deer"
	SpeciesElk           = "elk"
	SpeciesBlackBear     = "black_bear"
	SpeciesWildTurkey    = "wild_turkey"
)

type Species struct {
	ID             string   `json:"id"`
	CommonName     string   `json:"common_name"`
	ScientificName string   `json:"scientific_name"`
	PrimaryRegion  string   `json:"primary_region"`
	Regions        []string `json:"regions"`
	Aliases        []string `json:"aliases,omitempty"`
}

func BuiltInSpecies() []Species {
	return []Species{
		{
			ID:             SpeciesMoose,
			CommonName:     "Moose",
			ScientificName: "Alces alces",
			PrimaryRegion:  "northeast",
			Regions:        []string{"northeast", "alaska"},
			Aliases:        []string{"alces", "bull moose"},
		},
		{
			ID:             SpeciesWhitetailDeer,
			CommonName:     "White-tailed Deer",
			ScientificName: "Odocoileus virginianus",
			PrimaryRegion:  "midwest",
			Regions:        []string{"midwest", "southeast"},
			Aliases:        []string{"whitetail", "white tailed deer", "deer"},
		},
		{
			ID:             SpeciesElk,
			CommonName:     "Elk",
			ScientificName: "Cervus canadensis",
			PrimaryRegion:  "rocky_mountains",
			Regions:        []string{"rocky_mountains"},
			Aliases:        []string{"wapiti"},
		},
		{
			ID:             SpeciesBlackBear,
			CommonName:     "American Black Bear",
			ScientificName: "Ursus americanus",
			PrimaryRegion:  "appalachia",
			Regions:        []string{"appalachia"},
			Aliases:        []string{"bear", "american black bear"},
		},
		{
			ID:             SpeciesWildTurkey,
			CommonName:     "Wild Turkey",
			ScientificName: "Meleagris gallopavo",
			PrimaryRegion:  "eastern",
			Regions:        []string{"eastern"},
			Aliases:        []string{"turkey", "eastern wild turkey"},
		},
	}
}

// NormaliseID lower-cases an id and folds spaces, hyphens and slashes to underscores.
func NormaliseID(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	var b strings.Builder
	lastSep := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if r == ' ' || r == '\t' || r == '-' || r == '_' || r == '/' {
			if !lastSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastSep = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// LookupSpecies finds a species by id or alias.
func LookupSpecies(catalog []Species, raw string) (Species, bool) {
	id := NormaliseID(raw)
	if id == "" {
		return Species{}, false
	}
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	for _, s := range catalog {
		for _, alias := range s.Aliases {
			if NormaliseID(alias) == id {
				return s, true
			}
		}
	}
	return Species{}, false
}

type speciesCandidate struct {
	id   string
	dist int
}

// SuggestSpecies returns up to limit species ids whose id or alias is within
// edit distance of raw.
func SuggestSpecies(catalog []Species, raw string, limit int) []string {
	in := NormaliseID(raw)
	if len(in) < 3 || limit <= 0 {
		return nil
	}
	best := make(map[string]int)
	for _, s := range catalog {
		names := append([]string{s.ID}, s.Aliases...)
		for _, name := range names {
			name = NormaliseID(name)
			dist := levenshtein.ComputeDistance(in, name)
			if dist > levenshteinLimit(len(name)) {
				continue
			}
			if prev, ok := best[s.ID]; !ok || dist < prev {
				best[s.ID] = dist
			}
		}
	}
	cands := make([]speciesCandidate, 0, len(best))
	for id, dist := range best {
		cands = append(cands, speciesCandidate{id: id, dist: dist})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].id < cands[j].id
		}
		return cands[i].dist < cands[j].dist
	})
	out := make([]string, 0, limit)
	for _, c := range cands {
		out = append(out, c.id)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
