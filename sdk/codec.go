package sdk

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// reader and writer latch the first error so long fixed layouts read top to bottom.
type reader struct {
	dec *bin.Decoder
	err error
}

func newReader(data []byte) *reader {
	return &reader{dec: bin.NewBorshDecoder(data)}
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.dec.ReadUint8()
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.dec.ReadUint32(bin.LE)
	return v
}

func (r *reader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.dec.ReadUint64(bin.LE)
	return v
}

func (r *reader) i64() int64 {
	if r.err != nil {
		return 0
	}
	var v int64
	v, r.err = r.dec.ReadInt64(bin.LE)
	return v
}

func (r *reader) pubkey() solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	var b []byte
	b, r.err = r.dec.ReadBytes(solana.PublicKeyLength)
	if r.err != nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

func (r *reader) optionPubkey() *solana.PublicKey {
	switch r.u8() {
	case 0:
		return nil
	case 1:
		pk := r.pubkey()
		if r.err != nil {
			return nil
		}
		return &pk
	default:
		if r.err == nil {
			r.err = ErrInvalidOptionTag
		}
		return nil
	}
}

func (r *reader) fee() Fee {
	return Fee{Denominator: r.u64(), Numerator: r.u64()}
}

func (r *reader) futureFee() FutureEpochFee {
	tag := FutureEpochTag(r.u8())
	switch tag {
	case FutureEpochNone:
		return FutureEpochFee{}
	case FutureEpochOne, FutureEpochTwo:
		return FutureEpochFee{Tag: tag, Fee: r.fee()}
	default:
		if r.err == nil {
			r.err = ErrInvalidOptionTag
		}
		return FutureEpochFee{}
	}
}

type writer struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newWriter() *writer {
	w := &writer{}
	w.enc = bin.NewBorshEncoder(&w.buf)
	return w
}

func (w *writer) u8(v uint8) {
	if w.err == nil {
		w.err = w.enc.WriteUint8(v)
	}
}

func (w *writer) u32(v uint32) {
	if w.err == nil {
		w.err = w.enc.WriteUint32(v, bin.LE)
	}
}

func (w *writer) u64(v uint64) {
	if w.err == nil {
		w.err = w.enc.WriteUint64(v, bin.LE)
	}
}

func (w *writer) i64(v int64) {
	if w.err == nil {
		w.err = w.enc.WriteInt64(v, bin.LE)
	}
}

func (w *writer) bool(v bool) {
	if w.err == nil {
		w.err = w.enc.WriteBool(v)
	}
}

func (w *writer) pubkey(pk solana.PublicKey) {
	if w.err == nil {
		w.err = w.enc.WriteBytes(pk[:], false)
	}
}

func (w *writer) optionPubkey(pk *solana.PublicKey) {
	if pk == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.pubkey(*pk)
}

func (w *writer) fee(f Fee) {
	w.u64(f.Denominator)
	w.u64(f.Numerator)
}

func (w *writer) futureFee(f FutureEpochFee) {
	w.u8(uint8(f.Tag))
	if f.Tag != FutureEpochNone {
		w.fee(f.Fee)
	}
}

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}
