package thread

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lens-forum/app/domain"
)

const (
	MaxTags              = 5
	SummaryMaxLength     = 100
	DefaultMinReputation = 400
	shownSuggestions     = 6
)

var SuggestedTags = []string{
	"discussion", "help", "development", "question", "announcement",
	"tutorial", "feedback", "showcase", "governance", "research",
}

var (
	ErrTitleRequired           = errors.New("Title is required")
	ErrSummaryRequired         = errors.New("Summary is required")
	ErrContentRequired         = errors.New("Content is required")
	ErrReputationTokenRequired = errors.New("Reputation token required. Get one before creating threads.")
)

// ReputationError rejects an author whose score is below the minimum
type ReputationError struct {
	Score int
	Min   int
}

func (e *ReputationError) Error() string {
	return fmt.Sprintf("You need a reputation score of %d or higher to create threads. Your current score is %d.", e.Min, e.Score)
}

// Gate is the reputation requirement for creating threads
type Gate struct {
	Required bool
	MinScore int
}

// CheckReputation applies the gate to a looked up reputation
func (g Gate) CheckReputation(rep domain.Reputation) error {
	if !g.Required {
		return nil
	}
	minScore := g.MinScore
	if minScore <= 0 {
		minScore = DefaultMinReputation
	}
	if !rep.HasToken {
		return ErrReputationTokenRequired
	}
	if rep.Score < minScore {
		return &ReputationError{Score: rep.Score, Min: minScore}
	}
	return nil
}

// Form is the content of the new-thread form
type Form struct {
	Title   string
	Summary string
	Content string
	Tags    Tags
}

// Validate checks the required fields in display order
func (f Form) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return ErrTitleRequired
	case strings.TrimSpace(f.Summary) == "":
		return ErrSummaryRequired
	case strings.TrimSpace(f.Content) == "":
		return ErrContentRequired
	}
	return nil
}

// Check runs the whole validation order: fields first, then the reputation gate
func (f Form) Check(g Gate, rep domain.Reputation) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return g.CheckReputation(rep)
}

// Request builds the create-thread payload; contentHTML is the rendered body
func (f Form) Request(author, contentHTML string) domain.CreateThreadRequest {
	summary := strings.TrimSpace(f.Summary)
	if r := []rune(summary); len(r) > SummaryMaxLength {
		summary = string(r[:SummaryMaxLength])
	}
	tags := f.Tags.List()
	if tags == nil {
		tags = []string{}
	}
	return domain.CreateThreadRequest{
		Title:   strings.TrimSpace(f.Title),
		Summary: summary,
		Content: contentHTML,
		Tags:    tags,
		Author:  author,
	}
}

// Tags is the deduplicating, case-insensitive tag accumulator of the form
type Tags struct {
	items []string
}

// ParseTags splits a comma separated field, dropping blank entries
func ParseTags(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Add adds every comma separated part of input. Blank, duplicate and
// over-limit tags are dropped silently. It reports whether anything was added.
func (t *Tags) Add(input string) bool {
	added := false
	for _, tag := range ParseTags(input) {
		tag = strings.ToLower(tag)
		if t.Has(tag) || len(t.items) >= MaxTags {
			continue
		}
		t.items = append(t.items, tag)
		added = true
	}
	return added
}

func (t *Tags) Remove(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, existing := range t.items {
		if existing == tag {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Tags) RemoveLast() (string, bool) {
	if len(t.items) == 0 {
		return "", false
	}
	last := t.items[len(t.items)-1]
	t.items = t.items[:len(t.items)-1]
	return last, true
}

func (t *Tags) Clear() {
	t.items = nil
}

func (t Tags) Has(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, existing := range t.items {
		if existing == tag {
			return true
		}
	}
	return false
}

func (t Tags) Len() int {
	return len(t.items)
}

func (t Tags) Full() bool {
	return len(t.items) >= MaxTags
}

func (t Tags) List() []string {
	return append([]string(nil), t.items...)
}

// String is the comma separated form of the tags
func (t Tags) String() string {
	return strings.Join(t.items, ",")
}

// Suggestions returns up to six suggested tags not already added
func (t Tags) Suggestions() []string {
	var out []string
	for _, s := range SuggestedTags {
		if len(out) == shownSuggestions {
			break
		}
		if !t.Has(s) {
			out = append(out, s)
		}
	}
	return out
}
