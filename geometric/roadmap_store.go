package geometric

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/internal/blockcodec"
	"github.com/hupe1980/plango/internal/conv"
	"github.com/hupe1980/plango/space"
)

// Roadmap file layout:
//
//	magic "PRMR" | version u16 | space kind u8 | compression u8 | state len u32
//	block-compressed body:
//	  vertex count u32 | vertices (state len × f64 each)
//	  edge count u32   | edges (from u32, to u32, cost f64), from < to
const (
	roadmapMagic   = "PRMR"
	roadmapVersion = 1
	headerLen      = 4 + 2 + 1 + 1 + 4
)

// Compression selects how SaveRoadmap compresses the roadmap body.
type Compression = blockcodec.Type

const (
	CompressionNone = blockcodec.None
	CompressionLZ4  = blockcodec.LZ4
	CompressionZSTD = blockcodec.ZSTD
)

var (
	// ErrRoadmapFormat is returned when a roadmap stream is not a valid
	// roadmap file.
	ErrRoadmapFormat = errors.New("invalid roadmap format")

	// ErrRoadmapMismatch is returned when a roadmap was saved for a
	// different space.
	ErrRoadmapMismatch = errors.New("roadmap does not match the planning space")
)

// SaveRoadmap writes the roadmap to w, compressing the body with c.
func (p *PRM) SaveRoadmap(w io.Writer, c Compression) error {
	if p.rm == nil {
		return fmt.Errorf("%s: %w: call Setup before SaveRoadmap", p.name, plango.ErrNotReady)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", blockcodec.ErrUnknownType, c)
	}
	sp := p.pd.Space()
	counts, err := conv.Uint32s(space.StateLen(sp), p.rm.len(), p.rm.edges)
	if err != nil {
		return fmt.Errorf("%s: roadmap too large to save: %w", p.name, err)
	}

	var header [headerLen]byte
	copy(header[:4], roadmapMagic)
	binary.LittleEndian.PutUint16(header[4:], roadmapVersion)
	header[6] = byte(sp.Kind())
	header[7] = byte(c)
	binary.LittleEndian.PutUint32(header[8:], counts[0])
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	cw, err := blockcodec.NewWriter(w, c, 0)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(cw)
	var buf [8]byte

	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		bw.Write(buf[:4])
	}
	putF64 := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		bw.Write(buf[:])
	}

	putU32(counts[1])
	for _, s := range p.rm.states {
		for _, v := range space.Encode(s) {
			putF64(v)
		}
	}
	putU32(counts[2])
	for from, adj := range p.rm.adj {
		for _, e := range adj {
			if from < e.to {
				putU32(uint32(from)) // from < to < vertex count
				putU32(uint32(e.to))
				putF64(e.cost)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return cw.Close()
}

// LoadRoadmap replaces the roadmap with one read from r. The nearest
// neighbour index, components and goal vertices are rebuilt, after which
// Solve can run without ConstructRoadmap.
func (p *PRM) LoadRoadmap(r io.Reader) error {
	if p.status == StatusUnconfigured {
		return fmt.Errorf("%s: %w: call Setup before LoadRoadmap", p.name, plango.ErrNotReady)
	}
	sp := p.pd.Space()

	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("%w: header: %v", ErrRoadmapFormat, err)
	}
	if string(header[:4]) != roadmapMagic {
		return fmt.Errorf("%w: bad magic %q", ErrRoadmapFormat, header[:4])
	}
	if v := binary.LittleEndian.Uint16(header[4:]); v != roadmapVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrRoadmapFormat, v)
	}
	if k := space.Kind(header[6]); k != sp.Kind() {
		return fmt.Errorf("%w: saved for %s, planning in %s", ErrRoadmapMismatch, k, sp.Kind())
	}
	stateLen := int(binary.LittleEndian.Uint32(header[8:]))
	if stateLen != space.StateLen(sp) {
		return fmt.Errorf("%w: state length %d, space needs %d", ErrRoadmapMismatch, stateLen, space.StateLen(sp))
	}

	cr, err := blockcodec.NewReader(r, blockcodec.Type(header[7]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoadmapFormat, err)
	}
	br := bufio.NewReader(cr)
	var buf [8]byte
	readU32 := func() (uint32, error) {
		if _, err := io.ReadFull(br, buf[:4]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(buf[:4]), nil
	}
	readF64 := func() (float64, error) {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
	}
	truncated := func(err error) error {
		return fmt.Errorf("%w: truncated body: %v", ErrRoadmapFormat, err)
	}

	rm := newRoadmap(sp, p.opts.nnFactory)
	nv, err := readU32()
	if err != nil {
		return truncated(err)
	}
	flat := make([]float64, stateLen)
	for i := uint32(0); i < nv; i++ {
		for j := range flat {
			if flat[j], err = readF64(); err != nil {
				return truncated(err)
			}
		}
		s, err := space.Decode(sp, flat)
		if err != nil {
			return fmt.Errorf("%w: vertex %d: %v", ErrRoadmapFormat, i, err)
		}
		rm.addVertex(s, p.pd.Goal().IsSatisfied(s))
	}

	ne, err := readU32()
	if err != nil {
		return truncated(err)
	}
	for i := uint32(0); i < ne; i++ {
		from, err := readU32()
		if err != nil {
			return truncated(err)
		}
		to, err := readU32()
		if err != nil {
			return truncated(err)
		}
		cost, err := readF64()
		if err != nil {
			return truncated(err)
		}
		if from >= nv || to >= nv || from == to {
			return fmt.Errorf("%w: edge %d references vertex out of range", ErrRoadmapFormat, i)
		}
		rm.addEdge(int(from), int(to), cost)
	}

	p.rm = rm
	p.constructed = true
	return nil
}
