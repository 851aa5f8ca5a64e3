// Package securemem wraps locked, wipe-on-release buffers for passphrase,
// key, and seed material. Zeroing is best effort: Go's runtime may have
// copied the bytes before they reached a locked buffer, so the guarantee
// covers the buffer's current location only.
package securemem

import (
	"errors"

	"github.com/awnumar/memguard"
)

var (
	ErrEmptyBuffer = errors.New("securemem: empty buffer")
	ErrDestroyed   = errors.New("securemem: buffer already destroyed")
	ErrRandom      = errors.New("securemem: random source failed")
)

// Buffer holds secret bytes in memory that is locked against swapping and
// guaranteed to be zeroed on Destroy. It must not be copied by assignment;
// use Clone for an explicit wipe-guaranteed copy.
type Buffer struct {
	lb *memguard.LockedBuffer
}

// FromBytes takes ownership of raw and wipes the caller's slice.
func FromBytes(raw []byte) (*Buffer, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBuffer
	}
	return &Buffer{lb: memguard.NewBufferFromBytes(raw)}, nil
}

// FromString copies a secret string into a locked buffer. The string itself
// cannot be wiped; callers holding secrets should prefer FromBytes.
func FromString(s string) (*Buffer, error) {
	if s == "" {
		return nil, ErrEmptyBuffer
	}
	return FromBytes([]byte(s))
}

// Random fills a new locked buffer with bytes from the system CSPRNG.
func Random(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, ErrEmptyBuffer
	}
	lb := memguard.NewBufferRandom(size)
	if lb == nil || !lb.IsAlive() {
		return nil, ErrRandom
	}
	return &Buffer{lb: lb}, nil
}

// Bytes exposes a read view of the contents. The view is invalid after
// Destroy; callers must not retain it past the buffer's lifetime.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.lb == nil || !b.lb.IsAlive() {
		return nil
	}
	return b.lb.Bytes()
}

func (b *Buffer) Len() int {
	if b == nil || b.lb == nil || !b.lb.IsAlive() {
		return 0
	}
	return b.lb.Size()
}

// Clone produces an independent wipe-guaranteed copy.
func (b *Buffer) Clone() (*Buffer, error) {
	if b == nil || b.lb == nil || !b.lb.IsAlive() {
		return nil, ErrDestroyed
	}
	dup := make([]byte, b.lb.Size())
	copy(dup, b.lb.Bytes())
	return FromBytes(dup)
}

// Equal compares contents against other in constant time.
func (b *Buffer) Equal(other []byte) bool {
	if b == nil || b.lb == nil || !b.lb.IsAlive() {
		return false
	}
	return b.lb.EqualTo(other)
}

// Destroy zeroes and releases the buffer. Safe to call more than once and on
// every exit path, including error paths.
func (b *Buffer) Destroy() {
	if b == nil || b.lb == nil {
		return
	}
	b.lb.Destroy()
}

// Wipe zeroes an ordinary byte slice in place. For transient secrets that
// never made it into a locked buffer.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}
