package core

// VoicePools lists a TTS provider's voices split into two disjoint pools.
// Voice selection is not constrained by pool; the split only documents the
// character of each voice.
type VoicePools struct {
	Female []string
	Male   []string
}

// All returns every voice, female pool first.
func (p VoicePools) All() []string {
	out := make([]string, 0, len(p.Female)+len(p.Male))
	out = append(out, p.Female...)
	return append(out, p.Male...)
}

// Contains reports whether voice belongs to either pool.
func (p VoicePools) Contains(voice string) bool {
	for _, v := range p.All() {
		if v == voice {
			return true
		}
	}
	return false
}
