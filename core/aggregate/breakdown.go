package aggregate

import "encoding/json"

// None is the dominant category of an empty breakdown
const None = "None"

// Entry is one category count
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Breakdown counts categories in first-seen order
type Breakdown struct {
	entries []Entry
	index   map[string]int
}

// Add counts one occurrence of key
func (b *Breakdown) Add(key string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.entries[i].Count++
		return
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, Entry{Key: key, Count: 1})
}

// Dominant returns the key with the highest count. Ties go to the key seen
// first; an empty breakdown yields None.
func (b *Breakdown) Dominant() string {
	best := -1
	for i, e := range b.entries {
		if best < 0 || e.Count > b.entries[best].Count {
			best = i
		}
	}
	if best < 0 {
		return None
	}
	return b.entries[best].Key
}

// Count returns the tally for key
func (b *Breakdown) Count(key string) int {
	if i, ok := b.index[key]; ok {
		return b.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys
func (b *Breakdown) Len() int { return len(b.entries) }

// Total returns the sum of all counts
func (b *Breakdown) Total() int {
	n := 0
	for _, e := range b.entries {
		n += e.Count
	}
	return n
}

// Entries returns a copy in insertion order
func (b *Breakdown) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Breakdown) clone() Breakdown {
	c := Breakdown{entries: b.Entries()}
	if b.index != nil {
		c.index = make(map[string]int, len(b.index))
		for k, v := range b.index {
			c.index[k] = v
		}
	}
	return c
}

// MarshalJSON renders the breakdown with its dominant category
func (b Breakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Dominant  string  `json:"dominant"`
		Breakdown []Entry `json:"breakdown"`
	}{b.Dominant(), b.Entries()})
}
