package particles

import "fmt"

// InstanceBuffer is a device-visible array of Instance records that the
// renderer binds as its per-instance source.
//
// Map hands out a writable view of the whole buffer; Unmap ends the write
// scope and makes every write visible to the next draw. A view must not be
// kept after Unmap.
type InstanceBuffer interface {
	Len() int
	Map() ([]Instance, error)
	Unmap() error
}

// WithMapped runs fn with a mapped view of buf and unmaps on every exit path,
// including a panic in fn.
func WithMapped(buf InstanceBuffer, fn func(view []Instance)) (err error) {
	view, err := buf.Map()
	if err != nil {
		return fmt.Errorf("map instance buffer: %w", err)
	}
	defer func() {
		if uerr := buf.Unmap(); uerr != nil && err == nil {
			err = fmt.Errorf("unmap instance buffer: %w", uerr)
		}
	}()
	fn(view)
	return nil
}

// HostBuffer is an InstanceBuffer backed by host memory. Device backends use it
// as the staging side of an upload; tests use it directly.
type HostBuffer struct {
	data   []Instance
	mapped bool

	// OnUnmap, when set, receives the buffer contents at the end of every write scope.
	OnUnmap func(data []Instance) error
}

func NewHostBuffer(n int) *HostBuffer {
	return &HostBuffer{data: make([]Instance, n)}
}

func (b *HostBuffer) Len() int { return len(b.data) }

func (b *HostBuffer) Map() ([]Instance, error) {
	if b.mapped {
		return nil, ErrBufferMapped
	}
	b.mapped = true
	return b.data, nil
}

func (b *HostBuffer) Unmap() error {
	if !b.mapped {
		return ErrBufferNotMapped
	}
	b.mapped = false
	if b.OnUnmap != nil {
		return b.OnUnmap(b.data)
	}
	return nil
}

// Mapped reports whether a write scope is open.
func (b *HostBuffer) Mapped() bool { return b.mapped }

// Snapshot copies the current contents.
func (b *HostBuffer) Snapshot() []Instance {
	out := make([]Instance, len(b.data))
	copy(out, b.data)
	return out
}
