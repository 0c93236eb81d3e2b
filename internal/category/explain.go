package category

import "github.com/HelChris/semesterproject2/internal/listing"

// TagMatch records a tag that matched a category keyword.
type TagMatch struct {
	Tag     string
	Keyword string
}

// Explanation describes why a listing was classified the way it was.
// Intended for test fixtures and for diagnosing misclassification.
type Explanation struct {
	Category     Key
	TagMatches   []TagMatch
	TitleMatches []string
}

// Explain classifies a listing and reports every keyword/tag pair of the
// winning category that triggered the decision. Like Classify, it stops at
// the first category with any match.
func Explain(l listing.Listing) Explanation {
	tags := make([]string, 0, len(l.Tags))
	for _, tag := range l.Tags {
		tags = append(tags, normalizeTag(tag))
	}
	title := normalizeTitle(l.Title)

	for _, c := range Categories {
		kws := keywordsByKey[c.Key]

		var tagMatches []TagMatch
		for _, tag := range tags {
			for _, kw := range kws {
				if tag == kw.text || kw.pattern.MatchString(tag) {
					tagMatches = append(tagMatches, TagMatch{Tag: tag, Keyword: kw.text})
				}
			}
		}

		var titleMatches []string
		for _, kw := range kws {
			if kw.pattern.MatchString(title) {
				titleMatches = append(titleMatches, kw.text)
			}
		}

		if len(tagMatches) > 0 || len(titleMatches) > 0 {
			return Explanation{
				Category:     c.Key,
				TagMatches:   tagMatches,
				TitleMatches: titleMatches,
			}
		}
	}

	return Explanation{Category: Other}
}
