package interceptors

import (
	"sort"
)

// nameSet is a method-name membership set.
type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	s := make(nameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s nameSet) clone() nameSet {
	c := make(nameSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// registration carries the filter options of one registration batch.
type registration struct {
	only      []string
	except    []string
	hasOnly   bool
	hasExcept bool
}

// RegisterOption attaches an applicability filter to a registration batch.
type RegisterOption func(*registration)

// Only restricts every interceptor in the batch to the named methods. When
// combined with Except in one batch, Only wins and the exclusion list is
// never recorded.
func Only(names ...string) RegisterOption {
	return func(r *registration) {
		r.only = names
		r.hasOnly = true
	}
}

// Except skips every interceptor in the batch for the named methods.
func Except(names ...string) RegisterOption {
	return func(r *registration) {
		r.except = names
		r.hasExcept = true
	}
}

// Registry holds the configured before and after interceptor chains for a
// service type, together with per-interceptor applicability filters.
//
// A registry is built during service-type setup and must not be modified
// once dispatching begins. Concurrent reads of a frozen registry are safe;
// the configuration calls themselves are not synchronized.
type Registry struct {
	before []Interceptor
	after  []Interceptor

	inclusion map[Interceptor]nameSet
	exclusion map[Interceptor]nameSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		inclusion: make(map[Interceptor]nameSet),
		exclusion: make(map[Interceptor]nameSet),
	}
}

// Extend creates a deep copy of the registry for a subtype to build on.
// Chains and filters added to the copy never leak back into the parent.
func (r *Registry) Extend() *Registry {
	child := &Registry{
		before:    append([]Interceptor(nil), r.before...),
		after:     append([]Interceptor(nil), r.after...),
		inclusion: make(map[Interceptor]nameSet, len(r.inclusion)),
		exclusion: make(map[Interceptor]nameSet, len(r.exclusion)),
	}
	for in, set := range r.inclusion {
		child.inclusion[in] = set.clone()
	}
	for in, set := range r.exclusion {
		child.exclusion[in] = set.clone()
	}
	return child
}

// AppendBefore adds interceptors to the end of the before chain. Each ref
// is resolved through Ref; a single invalid reference rejects the whole
// batch without registering anything.
func (r *Registry) AppendBefore(refs []any, opts ...RegisterOption) error {
	return r.register(PhaseBefore, false, refs, opts)
}

// PrependBefore inserts interceptors ahead of the existing before chain.
func (r *Registry) PrependBefore(refs []any, opts ...RegisterOption) error {
	return r.register(PhaseBefore, true, refs, opts)
}

// AppendAfter adds interceptors to the end of the after chain.
func (r *Registry) AppendAfter(refs []any, opts ...RegisterOption) error {
	return r.register(PhaseAfter, false, refs, opts)
}

// PrependAfter inserts interceptors ahead of the existing after chain.
func (r *Registry) PrependAfter(refs []any, opts ...RegisterOption) error {
	return r.register(PhaseAfter, true, refs, opts)
}

func (r *Registry) register(phase Phase, prepend bool, refs []any, opts []RegisterOption) error {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	resolved := make([]Interceptor, 0, len(refs))
	for _, ref := range refs {
		in, err := Ref(ref)
		if err != nil {
			return err
		}
		resolved = append(resolved, in)
	}

	// Filters are recorded per interceptor reference. A later registration
	// of the same reference overwrites its previous filter of that kind.
	for _, in := range resolved {
		switch {
		case reg.hasOnly:
			r.inclusion[in] = newNameSet(reg.only)
		case reg.hasExcept:
			r.exclusion[in] = newNameSet(reg.except)
		}
	}

	chain := &r.before
	if phase == PhaseAfter {
		chain = &r.after
	}
	if prepend {
		merged := make([]Interceptor, 0, len(resolved)+len(*chain))
		merged = append(merged, resolved...)
		merged = append(merged, *chain...)
		*chain = merged
	} else {
		*chain = append(*chain, resolved...)
	}
	return nil
}

// applies evaluates the filter rule for one method name: an inclusion
// filter is the exclusive test when present, an exclusion filter is
// consulted otherwise, and an unfiltered interceptor always applies.
func (r *Registry) applies(in Interceptor, method string) bool {
	if only, ok := r.inclusion[in]; ok {
		return only.has(method)
	}
	if except, ok := r.exclusion[in]; ok {
		return !except.has(method)
	}
	return true
}

// Applicable reports whether the interceptor runs for a request dispatched
// under the given public and resolved method names. The interceptor is
// skipped unless its filters admit both.
func (r *Registry) Applicable(in Interceptor, publicName, methodName string) bool {
	return r.applies(in, publicName) && r.applies(in, methodName)
}

// BeforeChain returns a copy of the before chain in execution order.
func (r *Registry) BeforeChain() []Interceptor {
	return append([]Interceptor(nil), r.before...)
}

// AfterChain returns a copy of the after chain in execution order.
func (r *Registry) AfterChain() []Interceptor {
	return append([]Interceptor(nil), r.after...)
}

// InclusionFilter returns a copy of the per-interceptor allow lists.
func (r *Registry) InclusionFilter() map[Interceptor][]string {
	return filterCopy(r.inclusion)
}

// ExclusionFilter returns a copy of the per-interceptor deny lists.
func (r *Registry) ExclusionFilter() map[Interceptor][]string {
	return filterCopy(r.exclusion)
}

func filterCopy(filters map[Interceptor]nameSet) map[Interceptor][]string {
	out := make(map[Interceptor][]string, len(filters))
	for in, set := range filters {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		out[in] = names
	}
	return out
}
