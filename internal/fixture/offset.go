package fixture

import (
	"fmt"

	"github.com/dshills/fixtest/internal/textpos"
)

// TrackedOffset is a byte offset that edits may move or destroy.
// A destroyed offset carries no position; callers must check validity
// before using the value. The zero value is invalid.
type TrackedOffset struct {
	off   textpos.ByteOffset
	valid bool
}

// TrackOffset returns a valid tracked offset at off.
func TrackOffset(off textpos.ByteOffset) TrackedOffset {
	return TrackedOffset{off: off, valid: true}
}

// Get returns the offset and whether it is still valid.
func (t TrackedOffset) Get() (textpos.ByteOffset, bool) {
	return t.off, t.valid
}

// Valid reports whether the offset still names a position.
func (t TrackedOffset) Valid() bool {
	return t.valid
}

// Shift moves a valid offset by delta. Invalid offsets stay invalid.
func (t *TrackedOffset) Shift(delta textpos.ByteOffset) {
	if t.valid {
		t.off += delta
	}
}

// Invalidate destroys the offset. There is no way back; the position the
// offset named no longer exists in the edited content.
func (t *TrackedOffset) Invalidate() {
	t.valid = false
	t.off = 0
}

// String returns the offset value, or "<invalid>" for a destroyed offset.
func (t TrackedOffset) String() string {
	if !t.valid {
		return "<invalid>"
	}
	return fmt.Sprintf("%d", t.off)
}
