package modelstate

// DiffOptions tunes ModelDiff and ModelState. The zero value keeps timestamps.
type DiffOptions struct {
	// Excludes are redacted for this call only, on top of the model's hidden attributes.
	Excludes []string
	// WithoutTimestamps drops both timestamp columns from the diff.
	WithoutTimestamps bool
}

// ModelDiff summarizes what a write of m changes.
//
// New or just-created models report all current attributes except updated_at.
// Persisted models report only dirty attributes.
func ModelDiff(m Model, opts DiffOptions) Summary {
	hidden := hiddenWith(m, opts.Excludes)
	createdAt, updatedAt := timestampColumns(m)

	if isFresh(m) {
		drop := []string{updatedAt}
		if opts.WithoutTimestamps {
			drop = append(drop, createdAt)
		}
		return SummarizeChanges(except(m.Attributes(), drop), hidden)
	}

	var drop []string
	if opts.WithoutTimestamps {
		drop = []string{createdAt, updatedAt}
	}
	return SummarizeChanges(except(m.Dirty(), drop), hidden)
}

// ModelState returns the original and changed summaries of m.
// original is nil when m has no persisted state yet.
//
// original covers exactly the keys of changes and is redacted with the
// model's own hidden attributes only, not with opts.Excludes.
func ModelState(m Model, opts DiffOptions) (original, changes Summary) {
	changes = ModelDiff(m, opts)
	if isFresh(m) {
		return nil, changes
	}

	raw := m.RawOriginal()
	projected := make(map[string]any, len(changes))
	for k := range changes {
		projected[k] = raw[k]
	}
	return SummarizeChanges(projected, hiddenAttributes(m)), changes
}

// hiddenWith returns the hidden attributes of m plus extra, without touching m's slice.
func hiddenWith(m Model, extra []string) []string {
	return append(append([]string(nil), hiddenAttributes(m)...), extra...)
}

func isFresh(m Model) bool {
	return !m.Exists() || m.WasRecentlyCreated()
}

// except returns a copy of attrs without keys.
func except(attrs map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	for _, k := range keys {
		if k != "" {
			delete(out, k)
		}
	}
	return out
}
