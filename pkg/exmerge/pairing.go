package exmerge

// SheetPair names the worksheets compared together. An empty name means
// the workbook has no counterpart.
type SheetPair struct {
	Base   string `json:"base,omitempty"`
	Ours   string `json:"ours,omitempty"`
	Theirs string `json:"theirs,omitempty"`
}

// PairSheets matches worksheets by name, falling back to the sheet at the
// same tab index when that sheet is not claimed by name. Pairs follow ours
// order; theirs sheets left over are appended with an empty Ours.
func PairSheets(base, ours, theirs []string) []SheetPair {
	baseFor := matchNames(ours, base)
	theirsFor := matchNames(ours, theirs)

	pairs := make([]SheetPair, len(ours))
	usedTheirs := make(map[string]bool)
	for i, name := range ours {
		pairs[i] = SheetPair{Base: baseFor[i], Ours: name, Theirs: theirsFor[i]}
		usedTheirs[theirsFor[i]] = true
	}
	for _, name := range theirs {
		if !usedTheirs[name] {
			pairs = append(pairs, SheetPair{Base: lookupName(base, name), Theirs: name})
		}
	}
	return pairs
}

// matchNames returns, for each ref name, the counterpart in other or "".
func matchNames(ref, other []string) []string {
	byName := make(map[string]bool, len(other))
	for _, name := range other {
		byName[name] = true
	}
	claimed := make(map[string]bool, len(ref))
	for _, name := range ref {
		if byName[name] {
			claimed[name] = true
		}
	}

	out := make([]string, len(ref))
	for i, name := range ref {
		switch {
		case byName[name]:
			out[i] = name
		case i < len(other) && !claimed[other[i]]:
			out[i] = other[i]
			claimed[other[i]] = true
		}
	}
	return out
}

func lookupName(names []string, name string) string {
	for _, n := range names {
		if n == name {
			return n
		}
	}
	return ""
}
