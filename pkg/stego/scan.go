package stego

// FindNoteEnd looks for the release of key after start, at most window
// events ahead. ticks is the time accumulated up to and including the
// release.
func (s Sequence) FindNoteEnd(start int, key uint8, window int) (ticks uint32, idx int, ok bool) {
	end := min(len(s), start+1+window)
	for j := start + 1; j < end; j++ {
		ticks += s[j].Delta
		if s[j].IsNoteEnd() && s[j].Key == key {
			return ticks, j, true
		}
	}
	return 0, -1, false
}

// FindMarker returns the index of the first sync marker after `after`,
// at most window events ahead
func (s Sequence) FindMarker(after, window int) (int, bool) {
	end := min(len(s), after+1+window)
	for j := after + 1; j < end; j++ {
		if s[j].Kind == EventText && IsSyncMarker(s[j].Text) {
			return j, true
		}
	}
	return -1, false
}

// matchesPhrase reports whether the note starts in s[from:to] are exactly
// the keyframe phrase
func (s Sequence) matchesPhrase(from, to int, phrase []PhraseNote) bool {
	n := 0
	for j := from; j < to; j++ {
		if !s[j].IsNoteStart() {
			continue
		}
		if n >= len(phrase) || s[j].Key != phrase[n].Note.Key() {
			return false
		}
		n++
	}
	return n == len(phrase)
}
