package openmetrics

// Label is a single name/value pair identifying a timeseries dimension.
type Label struct {
	Name  string
	Value string
}

// LabelSet is implemented by types whose values identify one timeseries within
// a metric family. Implementations append their label pairs to dst in a stable
// order and return the extended slice.
//
// Types used as Family keys must additionally be comparable; a struct with
// string or enumeration fields is the usual shape:
//
//	type requestLabels struct {
//	    Method string
//	    Status string
//	}
//
//	func (l requestLabels) AppendLabels(dst []openmetrics.Label) []openmetrics.Label {
//	    return append(dst,
//	        openmetrics.Label{Name: "method", Value: l.Method},
//	        openmetrics.Label{Name: "status", Value: l.Status},
//	    )
//	}
type LabelSet interface {
	AppendLabels(dst []Label) []Label
}

// Labels is a plain slice of label pairs implementing LabelSet. It is not
// comparable and therefore cannot serve as a Family key; it is intended for
// constant labels, Info metrics and exemplars.
type Labels []Label

// AppendLabels implements LabelSet.
func (ls Labels) AppendLabels(dst []Label) []Label {
	return append(dst, ls...)
}

// NoLabels is the empty label set, for metrics without variable labels.
type NoLabels struct{}

// AppendLabels implements LabelSet.
func (NoLabels) AppendLabels(dst []Label) []Label { return dst }

// LabelSchema is optionally implemented by label set types (and by metrics
// wrapping them, such as families) to declare the label names their series will
// carry. When a registered metric exposes a schema, the registry validates the
// names at registration time: grammar per the configured name rule, no
// duplicates, no collision with constant labels, and no use of labels reserved
// by the metric type ("le" for histograms, "quantile" for summaries).
type LabelSchema interface {
	LabelNames() []string
}

// mergeLabels combines parent and child constant labels. Child labels override
// parent labels on name collision; relative order is parent labels first, then
// child-only labels, preserving first-seen positions.
func mergeLabels(parent, child []Label) []Label {
	if len(child) == 0 {
		return append([]Label(nil), parent...)
	}

	merged := make([]Label, 0, len(parent)+len(child))
	merged = append(merged, parent...)
	for _, cl := range child {
		replaced := false
		for i := range merged {
			if merged[i].Name == cl.Name {
				merged[i].Value = cl.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, cl)
		}
	}
	return merged
}
