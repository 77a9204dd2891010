// Package patch implements byte-range replacement of shell source text.
//
// Mutators compute patches from tree-sitter node spans against the exact
// source they parsed; Apply composes them into a new string. Patches are
// never reused across re-parses.
package patch

import "sort"

// Patch replaces source[Start:End] (half-open byte range) with Text.
// Start == End is a pure insertion.
type Patch struct {
	Start int
	End   int
	Text  string
}

// Apply splices patches into source.
//
// A patch whose range is contained in another patch's range is dropped, so
// nested rewrites (a subscript patch inside an enclosing declaration patch)
// never double-apply. Pure insertions sit on a range boundary and are never
// nested rewrites, so they survive; among identical ranges only the last
// patch in input order is kept. Survivors are applied from the highest start
// offset down, which keeps lower offsets valid as text shrinks or grows
// above them; at equal starts the wider range goes first, so an insertion
// there lands before the replaced text.
func Apply(source string, patches []Patch) string {
	if len(patches) == 0 {
		return source
	}

	kept := filterContained(patches)

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start > kept[j].Start
		}
		return kept[i].End > kept[j].End
	})

	for _, p := range kept {
		source = source[:p.Start] + p.Text + source[p.End:]
	}
	return source
}

func filterContained(patches []Patch) []Patch {
	kept := make([]Patch, 0, len(patches))
	for i, p := range patches {
		contained := false
		for j, other := range patches {
			if i == j {
				continue
			}
			if other.Start > p.Start || p.End > other.End {
				continue
			}
			if other.Start == p.Start && other.End == p.End {
				// identical ranges: the later patch wins
				if i < j {
					contained = true
					break
				}
				continue
			}
			if p.Start == p.End {
				// a pure insertion on the boundary of a replacement is
				// not a nested rewrite
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, p)
		}
	}
	return kept
}
