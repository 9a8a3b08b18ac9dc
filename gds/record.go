// Package gds reads and writes GDSII stream files: the hierarchical cell
// graph with boundary, reference, and array-reference records, and the
// flattened production form with one polygon-only top cell.
//
// Holes are not representable in a GDSII BOUNDARY, so polygons with holes
// are written as a single outer ring with zero-width keyhole slits cut to
// each hole. Decoding keeps such rings as plain polygons; enclosed area is
// preserved exactly.
package gds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFormat reports a malformed stream: truncated records, unknown
// mandatory record types, or invalid unit resolution. Decode failures
// wrap it; no partial hierarchy is ever returned.
var ErrFormat = errors.New("gds: invalid format")

// Record types.
const (
	recHEADER   = 0x00
	recBGNLIB   = 0x01
	recLIBNAME  = 0x02
	recUNITS    = 0x03
	recENDLIB   = 0x04
	recBGNSTR   = 0x05
	recSTRNAME  = 0x06
	recENDSTR   = 0x07
	recBOUNDARY = 0x08
	recPATH     = 0x09
	recSREF     = 0x0A
	recAREF     = 0x0B
	recTEXT     = 0x0C
	recLAYER    = 0x0D
	recDATATYPE = 0x0E
	recWIDTH    = 0x0F
	recXY       = 0x10
	recENDEL    = 0x11
	recSNAME    = 0x12
	recCOLROW   = 0x13
	recNODE     = 0x15
	recSTRANS   = 0x1A
	recMAG      = 0x1B
	recANGLE    = 0x1C
	recPATHTYPE = 0x21
	recELFLAGS  = 0x26
	recPLEX     = 0x2F
	recBOX      = 0x2D
)

// Data type codes carried in the record header.
const (
	dtNone   = 0x00
	dtBitArr = 0x01
	dtInt16  = 0x02
	dtInt32  = 0x03
	dtReal8  = 0x05
	dtASCII  = 0x06
)

const gdsVersion = 600

// stransMirror is the reflection flag: mirror about the x axis before
// rotation.
const stransMirror = 0x8000

// record is one decoded stream record.
type record struct {
	typ  byte
	dt   byte
	data []byte
}

// reader pulls records off a byte stream.
type reader struct {
	r      io.Reader
	offset int64
	hdr    [4]byte
}

// next reads one record. Truncation mid-record is a format error.
func (rd *reader) next() (record, error) {
	if _, err := io.ReadFull(rd.r, rd.hdr[:]); err != nil {
		if err == io.EOF {
			return record{}, fmt.Errorf("gds: offset %d: missing ENDLIB: %w", rd.offset, ErrFormat)
		}
		return record{}, fmt.Errorf("gds: offset %d: truncated record header: %w", rd.offset, ErrFormat)
	}
	length := int(binary.BigEndian.Uint16(rd.hdr[:2]))
	if length < 4 || length%2 != 0 {
		return record{}, fmt.Errorf("gds: offset %d: bad record length %d: %w", rd.offset, length, ErrFormat)
	}
	rec := record{typ: rd.hdr[2], dt: rd.hdr[3]}
	if length > 4 {
		rec.data = make([]byte, length-4)
		if _, err := io.ReadFull(rd.r, rec.data); err != nil {
			return record{}, fmt.Errorf("gds: offset %d: truncated record 0x%02x: %w", rd.offset, rec.typ, ErrFormat)
		}
	}
	rd.offset += int64(length)
	return rec, nil
}

func (r record) int16s() []int16 {
	out := make([]int16, len(r.data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(r.data[2*i:]))
	}
	return out
}

func (r record) int32s() []int32 {
	out := make([]int32, len(r.data)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.data[4*i:]))
	}
	return out
}

func (r record) str() string {
	b := r.data
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func (r record) real8s() []float64 {
	out := make([]float64, len(r.data)/8)
	for i := range out {
		out[i] = fromReal8(binary.BigEndian.Uint64(r.data[8*i:]))
	}
	return out
}

// writer emits records, capturing the first error.
type writer struct {
	w   io.Writer
	err error
}

func (wr *writer) record(typ, dt byte, data []byte) {
	if wr.err != nil {
		return
	}
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[:2], uint16(4+len(data)))
	hdr[2], hdr[3] = typ, dt
	if _, err := wr.w.Write(hdr[:]); err != nil {
		wr.err = err
		return
	}
	if len(data) > 0 {
		if _, err := wr.w.Write(data); err != nil {
			wr.err = err
		}
	}
}

func (wr *writer) int16s(typ byte, vals ...int16) {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(data[2*i:], uint16(v))
	}
	wr.record(typ, dtInt16, data)
}

func (wr *writer) int32s(typ byte, vals ...int32) {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(data[4*i:], uint32(v))
	}
	wr.record(typ, dtInt32, data)
}

// str writes an ASCII record, NUL-padded to even length.
func (wr *writer) str(typ byte, s string) {
	data := []byte(s)
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	wr.record(typ, dtASCII, data)
}

func (wr *writer) real8s(typ byte, vals ...float64) {
	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(data[8*i:], toReal8(v))
	}
	wr.record(typ, dtReal8, data)
}

func (wr *writer) bits(typ byte, flags uint16) {
	var data [2]byte
	binary.BigEndian.PutUint16(data[:], flags)
	wr.record(typ, dtBitArr, data[:])
}
