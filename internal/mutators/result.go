package mutators

// Result is one mutator invocation's outcome: the (possibly rewritten) text,
// whether anything changed, and free-form metadata about what fired.
type Result struct {
	Text        string
	Transformed bool
	Metadata    map[string]any
}

// Merge combines two results. An untransformed side yields to a transformed
// one. When both transformed, the other text wins and metadata is merged:
// list-valued keys concatenate, scalar keys overwrite.
func (r Result) Merge(other Result) Result {
	if !r.Transformed && other.Transformed {
		return other
	}
	if !other.Transformed {
		return r
	}

	merged := make(map[string]any, len(r.Metadata)+len(other.Metadata))
	for k, v := range r.Metadata {
		merged[k] = v
	}
	for k, v := range other.Metadata {
		if prev, ok := merged[k]; ok {
			pl, okPrev := prev.([]string)
			vl, okNew := v.([]string)
			if okPrev && okNew {
				merged[k] = append(append([]string{}, pl...), vl...)
				continue
			}
		}
		merged[k] = v
	}
	return Result{Text: other.Text, Transformed: true, Metadata: merged}
}
