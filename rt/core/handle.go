package core

// Handle is a reference-counted owner of a GPU object. The object is
// released when the last reference is dropped. Handles are used from the
// game loop only and are not safe for concurrent use.
type Handle[T Releaser] struct {
	value T
	refs  int
}

// NewHandle wraps v with a single reference owned by the caller.
func NewHandle[T Releaser](v T) *Handle[T] {
	return &Handle[T]{value: v, refs: 1}
}

func (h *Handle[T]) Get() T {
	return h.value
}

// Retain adds a reference and returns h so a second owner can hold it.
func (h *Handle[T]) Retain() *Handle[T] {
	if h.refs == 0 {
		panic("core: retain of released handle")
	}
	h.refs++
	return h
}

// Release drops one reference. Releasing a nil or fully released handle is a no-op.
func (h *Handle[T]) Release() {
	if h == nil || h.refs == 0 {
		return
	}
	h.refs--
	if h.refs == 0 {
		h.value.Release()
	}
}

func (h *Handle[T]) Refs() int {
	if h == nil {
		return 0
	}
	return h.refs
}
