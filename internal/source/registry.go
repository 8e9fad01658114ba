package source

// Add returns a new list with s appended. Uniqueness of s.ID is the
// caller's responsibility; use Contains first when it matters.
func Add(sources []Source, s Source) []Source {
	out := make([]Source, 0, len(sources)+1)
	out = append(out, sources...)
	return append(out, s)
}

// Remove returns a new list without any source whose ID is id.
// Duplicates of id are all dropped; an unknown id yields an equal copy.
func Remove(sources []Source, id string) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether a source with the given id is present.
func Contains(sources []Source, id string) bool {
	_, ok := Find(sources, id)
	return ok
}

// Find returns the first source with the given id.
func Find(sources []Source, id string) (Source, bool) {
	for _, s := range sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Latest returns the most recently added source.
func Latest(sources []Source) (Source, bool) {
	if len(sources) == 0 {
		return Source{}, false
	}
	return sources[len(sources)-1], true
}

// Clone returns a copy of sources that shares no backing array.
// A nil list clones to an empty one so it serializes as [].
func Clone(sources []Source) []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}
