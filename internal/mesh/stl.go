package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/millcheck/pkg/vec"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrInvalidSTL   = errors.New("invalid STL data")
)

const binarySTLHeaderSize = 84 // 80-byte comment + uint32 triangle count

// LoadSTL reads a mesh from an STL file, binary or ASCII. Shared vertices
// are welded by exact coordinate match, which is how STL duplicates them.
func LoadSTL(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := ParseSTL(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// ParseSTL parses STL data from raw bytes, sniffing binary vs ASCII.
func ParseSTL(data []byte) (*Mesh, error) {
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// isASCIISTL reports whether the data looks like ASCII STL. The "solid"
// prefix alone is not enough: some binary exporters write it into the
// comment header, so the body must also contain a "facet" keyword.
func isASCIISTL(data []byte) bool {
	head := bytes.TrimLeft(data[:min(len(data), 512)], " \t\r\n")
	if !bytes.HasPrefix(head, []byte("solid")) {
		return false
	}
	return bytes.Contains(data[:min(len(data), 1024)], []byte("facet"))
}

func parseBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < binarySTLHeaderSize {
		return nil, ErrTruncatedSTL
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	const recordSize = 50 // normal + 3 vertices (12 floats) + attribute uint16
	if len(data) < binarySTLHeaderSize+int(count)*recordSize {
		return nil, fmt.Errorf("%w: %d triangles declared", ErrTruncatedSTL, count)
	}

	w := newVertexWelder()
	offset := binarySTLHeaderSize
	for i := uint32(0); i < count; i++ {
		rec := data[offset : offset+recordSize]
		offset += recordSize

		var corners [3]vec.Vec3
		for c := 0; c < 3; c++ {
			base := 12 + c*12 // skip the stored normal, it is recomputed
			corners[c] = vec.Vec3{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+8:]))),
			}
		}
		w.addTriangle(corners)
	}
	return w.build()
}

func parseASCIISTL(data []byte) (*Mesh, error) {
	w := newVertexWelder()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var corners [3]vec.Vec3
	nCorners := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 || fields[0] != "vertex" {
			continue
		}
		var p vec.Vec3
		var errX, errY, errZ error
		p.X, errX = strconv.ParseFloat(fields[1], 64)
		p.Y, errY = strconv.ParseFloat(fields[2], 64)
		p.Z, errZ = strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("%w: bad vertex line %q", ErrInvalidSTL, scanner.Text())
		}
		corners[nCorners] = p
		nCorners++
		if nCorners == 3 {
			w.addTriangle(corners)
			nCorners = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if nCorners != 0 {
		return nil, fmt.Errorf("%w: facet with %d vertices", ErrInvalidSTL, nCorners)
	}
	return w.build()
}

// vertexWelder deduplicates exact-match vertices while accumulating faces.
// Degenerate triangles (repeated welded corners or zero area) are dropped,
// matching what mesh repair tools do on export.
type vertexWelder struct {
	lookup   map[vec.Vec3]int
	vertices []vec.Vec3
	faces    [][3]int
}

func newVertexWelder() *vertexWelder {
	return &vertexWelder{lookup: make(map[vec.Vec3]int)}
}

func (w *vertexWelder) vertexIndex(p vec.Vec3) int {
	if i, ok := w.lookup[p]; ok {
		return i
	}
	i := len(w.vertices)
	w.vertices = append(w.vertices, p)
	w.lookup[p] = i
	return i
}

func (w *vertexWelder) addTriangle(corners [3]vec.Vec3) {
	a := w.vertexIndex(corners[0])
	b := w.vertexIndex(corners[1])
	c := w.vertexIndex(corners[2])
	if a == b || b == c || a == c {
		return // collapsed edge
	}
	area := corners[1].Sub(corners[0]).Cross(corners[2].Sub(corners[0])).Length()
	if area < degenerateNormalEps {
		return
	}
	w.faces = append(w.faces, [3]int{a, b, c})
}

func (w *vertexWelder) build() (*Mesh, error) {
	if len(w.faces) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrInvalidSTL)
	}
	return New(w.vertices, w.faces)
}
