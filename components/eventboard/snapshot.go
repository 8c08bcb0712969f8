package eventboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is a single event name and its registration count.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Snapshot is the ordered mapping of event name to registration count as of
// the most recent successful read. Order is the order received from the
// source. A Snapshot is replaced wholesale, never merged.
type Snapshot []Entry

// NewSnapshot validates entries and folds duplicate names. A repeated name
// keeps its first position and takes the last count, matching how a JSON
// object with duplicate keys is read by browsers.
func NewSnapshot(entries ...Entry) (Snapshot, error) {
	out := make(Snapshot, 0, len(entries))
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("eventboard: entry %d has an empty event name", i)
		}
		if entry.Count < 0 {
			return nil, fmt.Errorf("eventboard: event %q has negative count %d", entry.Name, entry.Count)
		}
		if pos, ok := index[entry.Name]; ok {
			out[pos].Count = entry.Count
			continue
		}
		index[entry.Name] = len(out)
		out = append(out, entry)
	}
	return out, nil
}

// MustSnapshot is NewSnapshot for literals known to be valid.
func MustSnapshot(entries ...Entry) Snapshot {
	s, err := NewSnapshot(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len reports the number of events.
func (s Snapshot) Len() int { return len(s) }

// Count returns the registration count for name.
func (s Snapshot) Count(name string) (int, bool) {
	for _, entry := range s {
		if entry.Name == name {
			return entry.Count, true
		}
	}
	return 0, false
}

// Names returns the event names in display order.
func (s Snapshot) Names() []string {
	names := make([]string, len(s))
	for i, entry := range s {
		names[i] = entry.Name
	}
	return names
}

// Clone returns a copy that shares no backing array with s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return append(Snapshot(nil), s...)
}

// MarshalJSON encodes the snapshot as a JSON object in display order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", entry.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
