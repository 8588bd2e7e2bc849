package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Tag is a category label a board generator can filter goals on.
type Tag uint8

const (
	TagEquipment Tag = iota + 1
	TagBoss
	TagShop
	TagInn

	maxTag = TagInn
)

var tagNames = map[Tag]string{
	TagEquipment: "equipment",
	TagBoss:      "boss",
	TagShop:      "shop",
	TagInn:       "inn",
}

// String returns the canonical lowercase label.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	return t >= TagEquipment && t <= maxTag
}

// ParseTag resolves a label to its Tag.
//
// Matching is case-insensitive. A blank label yields (0, false, nil): legacy
// data uses an empty string to mean "no category".
func ParseTag(raw string) (Tag, bool, error) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return 0, false, nil
	}
	folded := cases.Fold().String(label)
	for tag, name := range tagNames {
		if name == folded {
			return tag, true, nil
		}
	}
	return 0, false, fmt.Errorf("unknown tag %q", raw)
}

// TagSet is a small closed set of tags. The zero value is the empty set.
type TagSet uint8

// NewTagSet builds a set from tags, ignoring invalid values.
func NewTagSet(tags ...Tag) TagSet {
	var set TagSet
	for _, tag := range tags {
		set = set.With(tag)
	}
	return set
}

// ParseTagSet parses labels into a set, skipping blank labels.
func ParseTagSet(labels []string) (TagSet, error) {
	var set TagSet
	for _, label := range labels {
		tag, ok, err := ParseTag(label)
		if err != nil {
			return 0, err
		}
		if ok {
			set = set.With(tag)
		}
	}
	return set, nil
}

// With returns a copy of s including tag.
func (s TagSet) With(tag Tag) TagSet {
	if !tag.Valid() {
		return s
	}
	return s | 1<<(tag-1)
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag Tag) bool {
	if !tag.Valid() {
		return false
	}
	return s&(1<<(tag-1)) != 0
}

// Len returns the number of tags in the set.
func (s TagSet) Len() int {
	n := 0
	for tag := TagEquipment; tag <= maxTag; tag++ {
		if s.Has(tag) {
			n++
		}
	}
	return n
}

// Tags lists the members in declaration order.
func (s TagSet) Tags() []Tag {
	tags := make([]Tag, 0, s.Len())
	for tag := TagEquipment; tag <= maxTag; tag++ {
		if s.Has(tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Labels lists the canonical labels in declaration order.
func (s TagSet) Labels() []string {
	tags := s.Tags()
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, tag.String())
	}
	return labels
}

func (s TagSet) String() string {
	return "[" + strings.Join(s.Labels(), " ") + "]"
}
