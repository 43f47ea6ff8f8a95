package render

import "sort"

// Keyboard implements spec.md §4.5's keyboard non-overlap post-process:
// sort by (channel, key, t, -dur, -event_id), keep the longest (newest
// on a tie) of every run sharing (channel, key, t), then truncate each
// retained event so it does not overlap the following event on the same
// (channel, key). This guarantees spec.md §8 property 8.
//
// Returns a copy of events with superseded entries flagged via their
// deleted field rather than removed, so the input's ordering and
// indices are preserved for callers that still want to inspect them.
func Keyboard(events []NoteEvent) []NoteEvent {
	out := make([]NoteEvent, len(events))
	copy(out, events)

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := out[order[i]], out[order[j]]
		if a.channel != b.channel {
			return a.channel < b.channel
		}
		if a.key != b.key {
			return a.key < b.key
		}
		if a.tSub != b.tSub {
			return a.tSub < b.tSub
		}
		if a.durSub != b.durSub {
			return a.durSub > b.durSub
		}
		return a.id > b.id
	})

	// Dedup: within each run sharing (channel, key, t), keep only the
	// first entry in sorted order (longest duration, newest on a tie).
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) {
			a, b := out[order[i]], out[order[j]]
			if a.channel != b.channel || a.key != b.key || a.tSub != b.tSub {
				break
			}
			j++
		}
		for k := i + 1; k < j; k++ {
			out[order[k]].deleted = true
		}
		i = j
	}

	// Truncate: each surviving event's duration is clamped so it ends no
	// later than the onset of the next surviving event on the same
	// (channel, key).
	for i, idx := range order {
		if out[idx].deleted {
			continue
		}
		for k := i + 1; k < len(order); k++ {
			cand := order[k]
			if out[cand].channel != out[idx].channel || out[cand].key != out[idx].key {
				break
			}
			if out[cand].deleted {
				continue
			}
			gap := out[cand].tSub - out[idx].tSub
			if out[idx].durSub > gap {
				out[idx].durSub = gap
			}
			break
		}
	}

	return out
}
