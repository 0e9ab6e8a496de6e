package testdef

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CategoryKind tags a section with the feature area it exercises.
type CategoryKind int

const (
	// KindBase sections always run.
	KindBase CategoryKind = iota
	// KindBonusLogic sections need logical operator (&&, ||) support.
	KindBonusLogic
	// KindBonusBackground sections need background execution (&) support.
	KindBonusBackground
	// KindBonusAll sections need every bonus feature at once.
	KindBonusAll
	// KindBonusOther is a bonus section no feature flag gates.
	KindBonusOther
)

// Section name prefixes that select a bonus kind.
const (
	bonusWord             = "bonus"
	bonusPrefixLogic      = "bonus logical operators"
	bonusPrefixBackground = "bonus background"
	bonusPrefixAll        = "bonus all"
)

var kindNames = map[CategoryKind]string{
	KindBase:            "base",
	KindBonusLogic:      "bonus-logic",
	KindBonusBackground: "bonus-background",
	KindBonusAll:        "bonus-all",
	KindBonusOther:      "bonus-other",
}

func (k CategoryKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Category is assigned once when a section header is parsed. Label is the
// full section name for bonus kinds and "base" otherwise.
type Category struct {
	Kind  CategoryKind
	Label string
}

// Classify derives the category of a section from its (trimmed) name.
func Classify(name string) Category {
	fields := strings.Fields(name)
	if len(fields) == 0 || fields[0] != bonusWord {
		return Category{Kind: KindBase, Label: "base"}
	}

	kind := KindBonusOther
	switch {
	case strings.HasPrefix(name, bonusPrefixAll):
		kind = KindBonusAll
	case strings.HasPrefix(name, bonusPrefixLogic):
		kind = KindBonusLogic
	case strings.HasPrefix(name, bonusPrefixBackground):
		kind = KindBonusBackground
	}
	return Category{Kind: kind, Label: name}
}

// IsBonus reports whether the category is any bonus kind.
func (c Category) IsBonus() bool {
	return c.Kind != KindBase
}

// Enabled reports whether sections of this category run under f.
func (c Category) Enabled(f Features) bool {
	switch c.Kind {
	case KindBonusLogic:
		return f.Logic
	case KindBonusBackground:
		return f.Background
	case KindBonusAll:
		return f.Logic && f.Background
	default:
		return true
	}
}

// SkipReason is the feature area named when a section is filtered out.
func (c Category) SkipReason() string {
	switch c.Kind {
	case KindBonusLogic:
		return "logic"
	case KindBonusBackground:
		return "background"
	case KindBonusAll:
		return "all bonuses"
	default:
		return ""
	}
}

func (c Category) String() string {
	return c.Kind.String()
}

// MarshalJSON renders the kind name and label for `shellprobe parse --json`.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Label string `json:"label"`
	}{Kind: c.Kind.String(), Label: c.Label})
}

// Skipped is a section excluded by Filter, with the feature it waited for.
type Skipped struct {
	Section Section
	Reason  string
}

// Filter splits sections into the ones enabled under f and the ones skipped,
// preserving file order in both.
func Filter(sections []Section, f Features) (included []Section, skipped []Skipped) {
	for _, s := range sections {
		if s.Category.Enabled(f) {
			included = append(included, s)
			continue
		}
		skipped = append(skipped, Skipped{Section: s, Reason: s.Category.SkipReason()})
	}
	return included, skipped
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
