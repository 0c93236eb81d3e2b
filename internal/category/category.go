// Package category assigns auction listings to a fixed set of marketplace
// categories using keyword matching against tags and titles. Classification
// is pure and deterministic: no I/O, no clock, no randomness.
package category

import (
	"regexp"
	"strings"

	"github.com/HelChris/semesterproject2/internal/listing"
)

// Key identifies a category. The zero value is not a valid category.
type Key string

const (
	MagicalItems     Key = "magical-items"
	RareCollectibles Key = "rare-collectibles"
	AncientBooks     Key = "ancient-books"
	ForestArtifacts  Key = "forest-artifacts"

	// Other is the synthetic label for listings matching no category.
	Other Key = "other"

	// All is a sentinel accepted by Filter meaning "do not filter".
	All Key = "all"
)

// Category is a static category definition. Keywords are matched
// case-insensitively as whole words.
type Category struct {
	Key      Key
	Name     string
	Keywords []string
}

// Categories holds the declared categories. Order is significant: Classify
// returns the first matching category, so an earlier category's title match
// beats a later category's tag match. Downstream behavior depends on this
// ordering, so keep it stable.
var Categories = []Category{
	{
		Key:  MagicalItems,
		Name: "Magical Items",
		Keywords: []string{
			"magic", "magical", "enchanted", "spell", "potion",
			"crystal", "wand", "charm", "mystical", "supernatural",
		},
	},
	{
		Key:  RareCollectibles,
		Name: "Rare Collectibles",
		Keywords: []string{
			"rare", "collectible", "vintage", "antique", "limited",
			"unique", "precious", "valuable", "collector",
		},
	},
	{
		Key:  AncientBooks,
		Name: "Ancient Books",
		Keywords: []string{
			"book", "tome", "manuscript", "scroll", "grimoire",
			"ancient", "old", "text", "writing", "literature",
		},
	},
	{
		Key:  ForestArtifacts,
		Name: "Forest Artifacts",
		Keywords: []string{
			"forest", "nature", "wood", "tree", "leaf",
			"branch", "natural", "woodland", "botanical", "organic",
		},
	},
}

// keyword holds a lowercased keyword with its precompiled whole-word pattern.
type keyword struct {
	text    string
	pattern *regexp.Regexp
}

var keywordsByKey = func() map[Key][]keyword {
	m := make(map[Key][]keyword, len(Categories))
	for _, c := range Categories {
		kws := make([]keyword, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			lower := strings.ToLower(kw)
			kws = append(kws, keyword{
				text:    lower,
				pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`),
			})
		}
		m[c.Key] = kws
	}
	return m
}()

func normalizeTag(tag string) string {
	return strings.TrimSpace(strings.ToLower(tag))
}

func normalizeTitle(title string) string {
	return strings.ToLower(title)
}

// Lookup returns the declared category for a key.
func Lookup(key Key) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// IsDeclared reports whether key names one of the declared categories.
func IsDeclared(key Key) bool {
	_, ok := Lookup(key)
	return ok
}

// Classify maps a listing to a category key, or Other when nothing matches.
//
// Categories are checked in declared order and the first match wins. Within
// a category, an exact or whole-word tag match is tried before a whole-word
// title match.
func Classify(l listing.Listing) Key {
	tags := make([]string, 0, len(l.Tags))
	for _, tag := range l.Tags {
		tags = append(tags, normalizeTag(tag))
	}
	title := normalizeTitle(l.Title)

	for _, c := range Categories {
		kws := keywordsByKey[c.Key]

		if matchTag(tags, kws) != nil {
			return c.Key
		}
		if matchTitle(title, kws) != "" {
			return c.Key
		}
	}

	return Other
}

// matchTag returns the first (tag, keyword) pair that matches, or nil.
func matchTag(tags []string, kws []keyword) *TagMatch {
	for _, tag := range tags {
		for _, kw := range kws {
			if tag == kw.text || kw.pattern.MatchString(tag) {
				return &TagMatch{Tag: tag, Keyword: kw.text}
			}
		}
	}
	return nil
}

// matchTitle returns the first keyword occurring as a whole word in the
// lowercased title, or "".
func matchTitle(title string, kws []keyword) string {
	for _, kw := range kws {
		if kw.pattern.MatchString(title) {
			return kw.text
		}
	}
	return ""
}

// GroupByKey classifies every listing and buckets them by category. Every
// declared category key is present in the result, plus Other, even when the
// bucket is empty.
func GroupByKey(listings []listing.Listing) map[Key][]listing.Listing {
	grouped := make(map[Key][]listing.Listing, len(Categories)+1)
	for _, c := range Categories {
		grouped[c.Key] = []listing.Listing{}
	}
	grouped[Other] = []listing.Listing{}

	for _, l := range listings {
		key := Classify(l)
		grouped[key] = append(grouped[key], l)
	}
	return grouped
}

// Filter returns the listings classified under key, preserving input order.
// An empty key or the All sentinel returns the input unchanged.
func Filter(listings []listing.Listing, key Key) []listing.Listing {
	if key == "" || key == All {
		return listings
	}

	filtered := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if Classify(l) == key {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
