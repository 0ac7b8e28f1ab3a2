package pool

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// On-disk snapshot layout, little-endian throughout:
//
//	offset  size  field
//	0       4     magic      "LOGC"
//	4       4     version    currently 1
//	8       4     max_things total slot count, including reserved slot 0
//	12      4     node_size  byte size of one encoded node record
//	16      4     first_free index of the first free slot (0 if full)
//	20      4*N   next_free  free-list links, one uint32 per slot
//	20+4*N  *     nodes      N fixed-size node records
//
// T must itself be a fixed-size, binary-encodable type (no pointers,
// strings, slices, or maps) for a Pool[T] to be snapshottable at all.
const (
	snapshotVersion = 1
	headerSize      = 20
)

var snapshotMagic = [4]byte{'L', 'O', 'G', 'C'}

type snapshotHeader struct {
	Magic     [4]byte
	Version   uint32
	MaxThings uint32
	NodeSize  uint32
	FirstFree uint32
}

// nodeRecordSize reports the encoded byte size of one node[T] record, or
// an error if T is not a fixed-size type encoding/binary can handle.
func nodeRecordSize[T any]() (uint32, error) {
	sz := binary.Size(node[T]{})
	if sz < 0 {
		return 0, fmt.Errorf("pool: payload type is not fixed-size; cannot be snapshotted")
	}
	return uint32(sz), nil
}

// SaveToFile encodes the pool's entire state — free-list and all node
// records, active or not — to path, then writes a BLAKE2b-256 sidecar
// checksum alongside it. The file is built in memory and written with a
// single os.WriteFile call: on any encoding error nothing is written, and
// path is left exactly as it was.
func (p *Pool[T]) SaveToFile(path string) error {
	nodeSize, err := nodeRecordSize[T]()
	if err != nil {
		return err
	}

	h := snapshotHeader{
		Magic:     snapshotMagic,
		Version:   snapshotVersion,
		MaxThings: uint32(len(p.nodes)),
		NodeSize:  nodeSize,
		FirstFree: p.firstFree,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("pool: encode header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, p.nextFree); err != nil {
		return fmt.Errorf("pool: encode free list: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, p.nodes); err != nil {
		return fmt.Errorf("pool: encode nodes: %w", err)
	}

	data := buf.Bytes()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pool: write snapshot: %w", err)
	}

	if err := writeChecksumSidecar(path, data); err != nil {
		return err
	}

	return nil
}

// LoadFromFile replaces the pool's entire state with what is stored at
// path. The file is fully read and validated — magic, version, capacity,
// node size, and first_free range, plus the sidecar checksum if one is
// present — into local buffers before any live field is touched. If any
// check fails, the pool is returned exactly as it was before the call.
// On success, the deferred-destroy queue is cleared: it describes
// handles that referred to the pool's pre-load state and would not mean
// anything in the loaded one.
func (p *Pool[T]) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("pool: read snapshot: %w", err)
	}

	if err := verifyChecksumSidecar(path, data); err != nil {
		return err
	}

	r := bytes.NewReader(data)

	var h snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("pool: read header: %w", err)
	}
	if h.Magic != snapshotMagic {
		return fmt.Errorf("pool: bad magic %q", h.Magic)
	}
	if h.Version != snapshotVersion {
		return fmt.Errorf("pool: unsupported snapshot version %d", h.Version)
	}

	wantN := uint32(len(p.nodes))
	if h.MaxThings != wantN {
		return fmt.Errorf("pool: capacity mismatch: snapshot has %d, pool has %d", h.MaxThings, wantN)
	}

	nodeSize, err := nodeRecordSize[T]()
	if err != nil {
		return err
	}
	if h.NodeSize != nodeSize {
		return fmt.Errorf("pool: node size mismatch: snapshot has %d, expected %d", h.NodeSize, nodeSize)
	}
	if h.FirstFree >= wantN {
		return fmt.Errorf("pool: first_free %d out of range [0,%d)", h.FirstFree, wantN)
	}

	nextFree := make([]uint32, wantN)
	if err := binary.Read(r, binary.LittleEndian, nextFree); err != nil {
		return fmt.Errorf("pool: read free list: %w", err)
	}

	nodes := make([]node[T], wantN)
	if err := binary.Read(r, binary.LittleEndian, nodes); err != nil {
		return fmt.Errorf("pool: read nodes: %w", err)
	}

	p.nodes = nodes
	p.nextFree = nextFree
	p.firstFree = h.FirstFree
	p.destroyQueue = p.destroyQueue[:0]

	return nil
}
