package emoji

import "sort"

// AllowList is an immutable set of characters exempt from the compliance gate.
// Membership is an exact string match, never a range match.
type AllowList struct {
	set map[string]struct{}
}

// defaultApproved renders reliably in the PDF fonts the book ships with.
var defaultApproved = []string{
	"\U00002713", // check mark
	"\U00002714", // heavy check mark
	"\U00002705", // white heavy check mark
	"\U0000274C", // cross mark
	"\U000026A0", // warning sign
	"\U000026A1", // high voltage
	"\U00002B50", // white medium star
	"\U0001F50D", // left-pointing magnifying glass
	"\U0001F4DD", // memo
	"\U0001F680", // rocket
	"\U0000FE0F", // variation selector-16
}

// NewAllowList builds an allow-list from the given characters.
// Empty strings are ignored.
func NewAllowList(chars ...string) AllowList {
	set := make(map[string]struct{}, len(chars))
	for _, c := range chars {
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return AllowList{set: set}
}

// DefaultAllowList returns the built-in approved set.
func DefaultAllowList() AllowList {
	return NewAllowList(defaultApproved...)
}

// IsApproved reports whether char is exactly a member of the list.
func (a AllowList) IsApproved(char string) bool {
	_, ok := a.set[char]
	return ok
}

// Len returns the number of approved characters.
func (a AllowList) Len() int {
	return len(a.set)
}

// Chars returns the approved characters in code point order.
func (a AllowList) Chars() []string {
	out := make([]string, 0, len(a.set))
	for c := range a.set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
