package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

const (
	// MagicNumber identifies geoshard snapshot blobs (ASCII: "GSHD").
	MagicNumber = 0x47534844
	// Version is the current snapshot format version.
	Version = 1
)

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrInvalidVersion   = errors.New("unsupported snapshot version")
	ErrTruncated        = errors.New("snapshot truncated")
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	ErrUnknownCodec     = errors.New("unknown snapshot codec")
)

// snapshotHeader precedes the (possibly compressed) payload.
//
// Layout, little endian:
//
//	magic       uint32
//	version     uint32
//	compression uint8
//	codecLen    uint8, codec name bytes
//	payloadLen  uint32
//	checksum    uint32  (CRC32 IEEE of the stored payload bytes)
type snapshotHeader struct {
	compression Compression
	codecName   string
}

func encodeSnapshot(h snapshotHeader, payload []byte) []byte {
	var buf bytes.Buffer
	var scratch [4]byte

	binary.LittleEndian.PutUint32(scratch[:], MagicNumber)
	buf.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], Version)
	buf.Write(scratch[:])
	buf.WriteByte(byte(h.compression))
	buf.WriteByte(byte(len(h.codecName)))
	buf.WriteString(h.codecName)
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(payload)))
	buf.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], crc32.ChecksumIEEE(payload))
	buf.Write(scratch[:])
	buf.Write(payload)

	return buf.Bytes()
}

func decodeSnapshot(data []byte) (snapshotHeader, []byte, error) {
	var h snapshotHeader

	if len(data) < 10 {
		return h, nil, ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != MagicNumber {
		return h, nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	h.compression = Compression(data[8])

	nameLen := int(data[9])
	rest := data[10:]
	if len(rest) < nameLen+8 {
		return h, nil, ErrTruncated
	}
	h.codecName = string(rest[:nameLen])
	rest = rest[nameLen:]

	payloadLen := binary.LittleEndian.Uint32(rest[0:4])
	checksum := binary.LittleEndian.Uint32(rest[4:8])
	rest = rest[8:]
	if uint32(len(rest)) < payloadLen {
		return h, nil, ErrTruncated
	}
	payload := rest[:payloadLen]

	if crc32.ChecksumIEEE(payload) != checksum {
		return h, nil, ErrChecksumMismatch
	}

	return h, payload, nil
}
