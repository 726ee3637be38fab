package uci

import "context"

// StaticSource serves a fixed ordinal table. Primarily for tests; a nil
// pointer in the table models an absent index (a gap).
type StaticSource struct {
	values []*string
}

// NewStaticSource builds a gap-free source from a list of values.
func NewStaticSource(values ...string) *StaticSource {
	s := &StaticSource{}
	for _, v := range values {
		v := v
		s.values = append(s.values, &v)
	}
	return s
}

// NewSparseSource builds a source with explicit gaps.
func NewSparseSource(values ...*string) *StaticSource {
	return &StaticSource{values: values}
}

// Lookup implements Source.
func (s *StaticSource) Lookup(ctx context.Context, index int) (string, bool, error) {
	if index < 0 || index >= len(s.values) || s.values[index] == nil {
		return "", false, nil
	}
	return *s.values[index], true, nil
}
