package language

// StyleMap maps lexical style ids (including allocated substyles) to visual
// style ids.
type StyleMap map[int]int

// Merge returns a copy of m with overlay applied on top. Keys unique to
// either map are preserved; keys present in both take the overlay value.
func (m StyleMap) Merge(overlay StyleMap) StyleMap {
	out := make(StyleMap, len(m)+len(overlay))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Clone returns a copy of m.
func (m StyleMap) Clone() StyleMap {
	if m == nil {
		return nil
	}
	out := make(StyleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
