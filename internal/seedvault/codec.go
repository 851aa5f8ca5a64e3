package seedvault

import (
	"encoding/binary"
	"fmt"
)

// RecordVersion is the only on-disk format version this build understands.
// Unknown versions are rejected, never guessed.
const RecordVersion = 1

// Record is the persisted form of an encrypted seed. The layout is fixed and
// self-describing, all integers big-endian:
//
//	version(1) | salt_len(1) | salt | kdf_algo_id(1) | kdf_cost(4) |
//	kdf_block(4) | kdf_parallel(4) | nonce_len(1) | nonce |
//	ciphertext_len(4) | ciphertext | tag(16)
type Record struct {
	Version    byte
	Salt       []byte
	KDF        Params
	Nonce      []byte
	Ciphertext []byte
	Tag        [TagLen]byte
}

// Encode serializes the record. Decode(Encode(r)) reproduces r byte for byte.
func (r *Record) Encode() []byte {
	out := make([]byte, 0, 1+1+len(r.Salt)+1+12+1+len(r.Nonce)+4+len(r.Ciphertext)+TagLen)
	out = append(out, r.Version)
	out = append(out, byte(len(r.Salt)))
	out = append(out, r.Salt...)
	out = append(out, byte(r.KDF.Algo))
	out = binary.BigEndian.AppendUint32(out, r.KDF.Cost)
	out = binary.BigEndian.AppendUint32(out, r.KDF.Block)
	out = binary.BigEndian.AppendUint32(out, r.KDF.Parallel)
	out = append(out, byte(len(r.Nonce)))
	out = append(out, r.Nonce...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(r.Ciphertext)))
	out = append(out, r.Ciphertext...)
	out = append(out, r.Tag[:]...)
	return out
}

// Decode parses raw into a record. Every declared length must match the bytes
// available and no trailing bytes may remain; a record that does not
// round-trip exactly is rejected.
func Decode(raw []byte) (*Record, error) {
	rd := recordReader{buf: raw}

	version, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if version != RecordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	rec := &Record{Version: version}
	saltLen, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if rec.Salt, err = rd.take(int(saltLen)); err != nil {
		return nil, err
	}
	algo, err := rd.u8()
	if err != nil {
		return nil, err
	}
	rec.KDF.Algo = KDFAlgo(algo)
	if rec.KDF.Cost, err = rd.u32(); err != nil {
		return nil, err
	}
	if rec.KDF.Block, err = rd.u32(); err != nil {
		return nil, err
	}
	if rec.KDF.Parallel, err = rd.u32(); err != nil {
		return nil, err
	}
	nonceLen, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if rec.Nonce, err = rd.take(int(nonceLen)); err != nil {
		return nil, err
	}
	ctLen, err := rd.u32()
	if err != nil {
		return nil, err
	}
	if rec.Ciphertext, err = rd.take(int(ctLen)); err != nil {
		return nil, err
	}
	tag, err := rd.take(TagLen)
	if err != nil {
		return nil, err
	}
	copy(rec.Tag[:], tag)

	if rd.off != len(rd.buf) {
		return nil, fmt.Errorf("%w: %d extra bytes", ErrTrailingData, len(rd.buf)-rd.off)
	}
	return rec, nil
}

// aad is the associated data sealed into the tag: the version byte plus the
// KDF parameter block, so a record cannot be replayed under swapped
// parameters without detection. The salt is covered transitively by key
// derivation itself.
func (r *Record) aad() []byte {
	aad := make([]byte, 0, 14)
	aad = append(aad, r.Version, byte(r.KDF.Algo))
	aad = binary.BigEndian.AppendUint32(aad, r.KDF.Cost)
	aad = binary.BigEndian.AppendUint32(aad, r.KDF.Block)
	aad = binary.BigEndian.AppendUint32(aad, r.KDF.Parallel)
	return aad
}

type recordReader struct {
	buf []byte
	off int
}

func (r *recordReader) u8() (byte, error) {
	if r.off+1 > len(r.buf) {
		return 0, ErrTruncated
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *recordReader) u32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v, nil
}

func (r *recordReader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, ErrTruncated
	}
	out := append([]byte(nil), r.buf[r.off:r.off+n]...)
	r.off += n
	return out, nil
}
