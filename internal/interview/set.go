package interview

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings that serializes as a sorted JSON array.
type StringSet map[string]struct{}

// Add inserts v.
func (s StringSet) Add(v string) { s[v] = struct{}{} }

// Has reports membership.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	set := make(StringSet, len(items))
	for _, v := range items {
		set.Add(v)
	}
	*s = set
	return nil
}
