package vectorizer

import (
	"fmt"
	"sort"
)

// Document is one labeled pattern: its token sequence and intent tag.
type Document struct {
	Tokens []string
	Tag    string
}

// Vocabulary holds the ordered token list and the ordered class list a model
// is trained against. Index i of Words is feature i; index j of Classes is
// output j.
type Vocabulary struct {
	Words   []string
	Classes []string
}

// BuildVocabulary pools tokens and tags from docs, drops tokens in ignore,
// deduplicates both pools and sorts them.
func BuildVocabulary(docs []Document, ignore []string) Vocabulary {
	skip := make(map[string]bool, len(ignore))
	for _, w := range ignore {
		skip[w] = true
	}

	wordSet := make(map[string]bool)
	classSet := make(map[string]bool)
	for _, doc := range docs {
		for _, tok := range doc.Tokens {
			if tok == "" || skip[tok] {
				continue
			}
			wordSet[tok] = true
		}
		classSet[doc.Tag] = true
	}

	return Vocabulary{
		Words:   sortedKeys(wordSet),
		Classes: sortedKeys(classSet),
	}
}

// ClassIndex returns the output position of tag, or -1.
func (v Vocabulary) ClassIndex(tag string) int {
	i := sort.SearchStrings(v.Classes, tag)
	if i < len(v.Classes) && v.Classes[i] == tag {
		return i
	}
	return -1
}

// Validate checks that both lists are non-empty, sorted and free of duplicates.
func (v Vocabulary) Validate() error {
	if len(v.Words) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	if len(v.Classes) == 0 {
		return fmt.Errorf("empty class list")
	}
	if err := checkSorted("vocabulary", v.Words); err != nil {
		return err
	}
	return checkSorted("class list", v.Classes)
}

func checkSorted(name string, items []string) error {
	for i := 1; i < len(items); i++ {
		if items[i-1] >= items[i] {
			return fmt.Errorf("%s not strictly sorted at %d (%q, %q)", name, i, items[i-1], items[i])
		}
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
