package dispatch

// API is the service's declared operation surface. The engine consults it
// for Concrete requests only: a method may exist on the service object yet
// stay hidden from external callers.
type API interface {
	// Published reports whether the named operation is exposed to callers.
	Published(name string) bool
}

// APIFunc is a function adapter for API.
type APIFunc func(name string) bool

// Published implements API.
func (f APIFunc) Published(name string) bool {
	return f(name)
}

// PublishedSet is a fixed allow-list API.
type PublishedSet map[string]struct{}

// NewPublishedSet builds an API publishing exactly the given names.
func NewPublishedSet(names ...string) PublishedSet {
	s := make(PublishedSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Published implements API.
func (s PublishedSet) Published(name string) bool {
	_, ok := s[name]
	return ok
}
