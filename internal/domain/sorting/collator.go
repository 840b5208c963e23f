package sorting

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no collation locale is configured or the
// configured one does not parse.
var DefaultLocale = language.Korean

// Collator orders text for display. The underlying collate.Collator keeps
// internal buffers, so access is serialized.
type Collator struct {
	mu  sync.Mutex
	c   *collate.Collator
	tag language.Tag
}

// NewCollator returns a collator for tag.
func NewCollator(tag language.Tag) *Collator {
	return &Collator{c: collate.New(tag), tag: tag}
}

// ParseLocale parses a BCP 47 locale, falling back to DefaultLocale.
func ParseLocale(locale string) language.Tag {
	if locale == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	return tag
}

// Tag returns the locale the collator was built for.
func (c *Collator) Tag() language.Tag { return c.tag }

// Compare orders a and b under the collator's locale.
func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// locked runs fn with the collator held for its whole duration.
func (c *Collator) locked(fn func(compare func(a, b string) int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.c.CompareString)
}

var (
	defaultOnce     sync.Once
	defaultCollator *Collator
)

func orDefault(c *Collator) *Collator {
	if c != nil {
		return c
	}
	defaultOnce.Do(func() { defaultCollator = NewCollator(DefaultLocale) })
	return defaultCollator
}
