package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// File format constants
const (
	// FormatMagic identifies graph files
	FormatMagic uint32 = 0x56474E52 // "VGNR"

	// FormatVersion is the current format version
	FormatVersion uint32 = 1

	// HeaderSize is the size of the file header in bytes
	HeaderSize = 16
)

// Compression selects how the record body is stored.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name to a Compression. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("graph: unknown compression %q", s)
	}
}

// FileHeader is the fixed-size prefix of a graph file.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	Compression Compression
	Count       uint32
}

func (h *FileHeader) marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = byte(h.Compression)
	binary.LittleEndian.PutUint32(buf[12:], h.Count)

	return buf
}

func (h *FileHeader) unmarshal(buf []byte) {
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.Compression = Compression(buf[8])
	h.Count = binary.LittleEndian.Uint32(buf[12:])
}

// Validate checks if the header is valid.
func (h *FileHeader) Validate() error {
	if h.Magic != FormatMagic {
		return fmt.Errorf("%w: magic 0x%08X (expected 0x%08X)", ErrInvalidFormat, h.Magic, FormatMagic)
	}

	if h.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalidFormat, h.Version, FormatVersion)
	}

	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidFormat, h.Compression)
	}

	return nil
}

// Encode writes g to w. The graph must not be mutated while encoding.
func Encode(w io.Writer, g *Graph, c Compression) error {
	if uint64(g.Len()) > math.MaxUint32 {
		return fmt.Errorf("%w: %d nodes exceed the format limit", ErrInvalidFormat, g.Len())
	}

	h := FileHeader{
		Magic:       FormatMagic,
		Version:     FormatVersion,
		Compression: c,
		Count:       uint32(g.Len()),
	}
	if err := h.Validate(); err != nil {
		return err
	}

	if _, err := w.Write(h.marshal()); err != nil {
		return fmt.Errorf("graph: write header: %w", err)
	}

	body, finish, err := compressWriter(w, c)
	if err != nil {
		return err
	}

	if err := writeRecords(body, g); err != nil {
		_ = finish()
		return err
	}

	return finish()
}

func writeRecords(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	crc := crc32.NewIEEE()
	out := io.MultiWriter(bw, crc)

	var scratch [4]byte

	writeUint32 := func(v uint32) error {
		binary.LittleEndian.PutUint32(scratch[:], v)
		_, err := out.Write(scratch[:])
		return err
	}

	for a := range g.adj {
		g.locks[a].RLock()
		list := g.adj[a]

		err := writeUint32(uint32(a))
		if err == nil {
			err = writeUint32(uint32(len(list)))
		}

		for i := 0; err == nil && i < len(list); i++ {
			err = writeUint32(list[i])
		}
		g.locks[a].RUnlock()

		if err != nil {
			return fmt.Errorf("graph: write node %d: %w", a, err)
		}
	}

	binary.LittleEndian.PutUint32(scratch[:], crc.Sum32())

	if _, err := bw.Write(scratch[:]); err != nil {
		return fmt.Errorf("graph: write checksum: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("graph: flush: %w", err)
	}

	return nil
}

// maxPrealloc bounds allocations sized from header or record fields before
// the matching data has been read.
const maxPrealloc = 1 << 16

// Decode reads a graph written by Encode. Every node must appear exactly
// once; neighbor order within a record is not significant.
func Decode(r io.Reader) (*Graph, error) {
	return decode(r, -1)
}

// DecodeN is like Decode but requires the graph to have exactly n nodes. A
// different count is rejected right after the header.
func DecodeN(r io.Reader, n int) (*Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNodeCount, n)
	}

	return decode(r, n)
}

type record struct {
	node uint32
	list []uint32
}

func decode(r io.Reader, expected int) (*Graph, error) {
	hbuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hbuf); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidFormat, err)
	}

	var h FileHeader
	h.unmarshal(hbuf)

	if err := h.Validate(); err != nil {
		return nil, err
	}

	n := int(h.Count)
	if expected >= 0 && n != expected {
		return nil, fmt.Errorf("%w: file has %d nodes, expected %d", ErrNodeCount, n, expected)
	}

	body, closeBody, err := decompressReader(r, h.Compression)
	if err != nil {
		return nil, err
	}
	defer closeBody()

	crc := crc32.NewIEEE()
	br := bufio.NewReader(body)
	in := io.TeeReader(br, crc)

	var scratch [4]byte

	readUint32 := func(src io.Reader) (uint32, error) {
		if _, err := io.ReadFull(src, scratch[:]); err != nil {
			return 0, err
		}

		return binary.LittleEndian.Uint32(scratch[:]), nil
	}

	// Records are collected first so memory grows with the input, not with
	// the count claimed by the header.
	records := make([]record, 0, min(n, maxPrealloc))

	for range n {
		a, err := readUint32(in)
		if err != nil {
			return nil, fmt.Errorf("%w: read node id: %w", ErrInvalidFormat, err)
		}

		if int(a) >= n {
			return nil, &NodeOutOfRangeError{Node: a, Count: n}
		}

		deg, err := readUint32(in)
		if err != nil {
			return nil, fmt.Errorf("%w: read degree of node %d: %w", ErrInvalidFormat, a, err)
		}

		if int(deg) >= n {
			return nil, fmt.Errorf("%w: node %d has degree %d in a graph of %d nodes", ErrInvalidFormat, a, deg, n)
		}

		list := make([]uint32, 0, min(int(deg), maxPrealloc))

		for range deg {
			b, err := readUint32(in)
			if err != nil {
				return nil, fmt.Errorf("%w: read neighbors of node %d: %w", ErrInvalidFormat, a, err)
			}

			if int(b) >= n {
				return nil, &NodeOutOfRangeError{Node: b, Count: n}
			}

			if b == a {
				return nil, ErrSelfLoop
			}

			list = insertSorted(list, b)
		}

		records = append(records, record{node: a, list: list})
	}

	want, err := readUint32(br)
	if err != nil {
		return nil, fmt.Errorf("%w: read checksum: %w", ErrInvalidFormat, err)
	}

	if got := crc.Sum32(); got != want {
		return nil, fmt.Errorf("%w: 0x%08X (expected 0x%08X)", ErrChecksum, got, want)
	}

	g := New(n)
	seen := bitset.New(uint(n))

	for _, rec := range records {
		if seen.Test(uint(rec.node)) {
			return nil, fmt.Errorf("%w: node %d appears twice", ErrInvalidFormat, rec.node)
		}

		seen.Set(uint(rec.node))
		g.adj[rec.node] = rec.list
	}

	return g, nil
}

func compressWriter(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		return zw, zw.Close, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("graph: zstd writer: %w", err)
		}

		return zw, zw.Close, nil
	default:
		return w, func() error { return nil }, nil
	}
}

func decompressReader(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("graph: zstd reader: %w", err)
		}

		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}
