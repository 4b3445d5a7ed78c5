package knowledge

// Index is the process-wide, read-only set of fragments derived from the
// knowledge document. It is built once at startup.
type Index struct {
	source    string
	fragments []Fragment
	err       error
}

func NewIndex(source string, fragments []Fragment) *Index {
	return &Index{source: source, fragments: fragments}
}

// Unavailable marks a document that could not be loaded. It holds no
// fragments, so retrieval always comes back empty.
func Unavailable(source string, err error) *Index {
	return &Index{source: source, err: err}
}

func (ix *Index) Source() string {
	if ix == nil {
		return ""
	}
	return ix.source
}

// Fragments returns the shared fragment slice. Callers must not modify it.
func (ix *Index) Fragments() []Fragment {
	if ix == nil {
		return nil
	}
	return ix.fragments
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.fragments)
}

func (ix *Index) Available() bool {
	return ix != nil && ix.err == nil
}

func (ix *Index) Err() error {
	if ix == nil {
		return nil
	}
	return ix.err
}
