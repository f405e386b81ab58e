// Package model defines the records that flow through the opportunity pipeline.
package model

// DefaultProcess is the process label used when no process tag matches.
const DefaultProcess = "extraction/processing"

// Bottleneck is a described limitation in an industrial process, tagged to
// an industry. Values are immutable once extracted.
type Bottleneck struct {
	Industry    string `json:"industry"`
	Process     string `json:"process"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// BottleneckKey identifies a bottleneck for deduplication. Two sources that
// echo the same sentence for the same industry share a key.
type BottleneckKey struct {
	Industry    string
	Description string
}

// Key returns the dedup key for b.
func (b Bottleneck) Key() BottleneckKey {
	return BottleneckKey{Industry: b.Industry, Description: b.Description}
}

// DedupeBottlenecks drops later bottlenecks whose (industry, description)
// pair was already seen. Order of first occurrence is preserved.
func DedupeBottlenecks(in []Bottleneck) []Bottleneck {
	seen := make(map[BottleneckKey]struct{}, len(in))
	out := make([]Bottleneck, 0, len(in))
	for _, b := range in {
		k := b.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, b)
	}
	return out
}
