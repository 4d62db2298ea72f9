package particles

import "errors"

var (
	// ErrConstruction marks a failed mesh, buffer, shader or device object creation.
	// It is fatal; callers are expected to abort.
	ErrConstruction = errors.New("particles: construction failed")

	// ErrInvariant marks a construction parameter that can never produce a working engine.
	ErrInvariant = errors.New("particles: invariant violation")

	ErrBufferMapped    = errors.New("particles: instance buffer already mapped")
	ErrBufferNotMapped = errors.New("particles: instance buffer not mapped")
)
