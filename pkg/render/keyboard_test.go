package render

import "testing"

func TestKeyboard_DedupKeepsLongestAtSameOnset(t *testing.T) {
	events := []NoteEvent{
		{id: 0, channel: 1, key: 60, tSub: 0, durSub: 10},
		{id: 1, channel: 1, key: 60, tSub: 0, durSub: 40},
		{id: 2, channel: 1, key: 60, tSub: 0, durSub: 40},
	}
	out := Keyboard(events)
	survivors := 0
	for _, e := range out {
		if !e.deleted {
			survivors++
			if e.durSub != 40 || e.id != 2 {
				t.Fatalf("survivor = %+v, want the longest, newest-on-tie entry (id 2, dur 40)", e)
			}
		}
	}
	if survivors != 1 {
		t.Fatalf("survivors = %d, want 1", survivors)
	}
}

func TestKeyboard_TruncatesOverlapWithNextOnSameChannelKey(t *testing.T) {
	events := []NoteEvent{
		{id: 0, channel: 1, key: 60, tSub: 0, durSub: 100},
		{id: 1, channel: 1, key: 60, tSub: 30, durSub: 50},
	}
	out := Keyboard(events)
	if out[0].deleted || out[1].deleted {
		t.Fatalf("neither event should be deleted: %+v", out)
	}
	if out[0].durSub != 30 {
		t.Fatalf("first event durSub = %d, want 30 (truncated to the next onset)", out[0].durSub)
	}
	if out[1].durSub != 50 {
		t.Fatalf("second event durSub = %d, want 50 (unaffected, no successor)", out[1].durSub)
	}
}

func TestKeyboard_IgnoresDifferentChannelOrKey(t *testing.T) {
	events := []NoteEvent{
		{id: 0, channel: 1, key: 60, tSub: 0, durSub: 100},
		{id: 1, channel: 1, key: 61, tSub: 10, durSub: 5},
		{id: 2, channel: 2, key: 60, tSub: 10, durSub: 5},
	}
	out := Keyboard(events)
	for _, e := range out {
		if e.deleted {
			t.Fatalf("no event shares (channel, key, t) with another here: %+v", e)
		}
	}
	if out[0].durSub != 100 {
		t.Fatalf("durSub = %d, want 100 (untouched by notes on other channels/keys)", out[0].durSub)
	}
}
