package names

// MergeResult is the outcome of reconciling an incoming batch of names with
// a stored list. All slices are non-nil.
type MergeResult struct {
	// Merged is the stored list followed by Added, in order.
	Merged []string `json:"merged"`
	// Added holds incoming names whose key was not yet known.
	Added []string `json:"added"`
	// AlreadyExisted holds incoming names whose key was already known,
	// either from the stored list or from earlier in the same batch.
	AlreadyExisted []string `json:"already_existed"`
}

// Merge appends the names of incoming that are not already present in
// existing. Raw strings are kept as given; comparison uses Normalize.
// Names that normalize to "" are skipped and appear in neither Added nor
// AlreadyExisted. Neither input slice is modified.
func Merge(existing, incoming []string) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, name := range existing {
		seen[Normalize(name)] = struct{}{}
	}

	added := make([]string, 0, len(incoming))
	alreadyExisted := make([]string, 0)
	for _, name := range incoming {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			alreadyExisted = append(alreadyExisted, name)
			continue
		}
		seen[key] = struct{}{}
		added = append(added, name)
	}

	merged := make([]string, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)

	return MergeResult{
		Merged:         merged,
		Added:          added,
		AlreadyExisted: alreadyExisted,
	}
}

// FindNewNames returns the names of incoming that Merge would add to
// existing, deduplicated within the batch.
func FindNewNames(incoming, existing []string) []string {
	return Merge(existing, incoming).Added
}

// Dedupe returns names with blanks and normalized duplicates removed,
// keeping the first spelling of each person.
func Dedupe(names []string) []string {
	return Merge(nil, names).Added
}
