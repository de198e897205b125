package hobby

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrCacheMissing means one or both cache files do not exist.
	ErrCacheMissing = errors.New("embedding cache missing")
	// ErrCacheInvalid means the cache files exist but cannot be used.
	ErrCacheInvalid = errors.New("embedding cache invalid")
)

// EmbeddingCache pairs each catalog document with its embedding row.
type EmbeddingCache struct {
	Documents []string
	Matrix    [][]float32
}

// ValidFor reports whether the cache matches a catalog of n records.
func (c *EmbeddingCache) ValidFor(n int) bool {
	if c == nil {
		return false
	}
	return len(c.Documents) == n && len(c.Matrix) == n
}

// Dim returns the row width, or 0 for an empty matrix.
func (c *EmbeddingCache) Dim() int {
	if c == nil || len(c.Matrix) == 0 {
		return 0
	}
	return len(c.Matrix[0])
}

// CacheStore persists an EmbeddingCache as a NumPy matrix file and a JSON
// array of documents, read and written as a pair.
type CacheStore struct {
	MatrixPath    string
	DocumentsPath string
}

// Load reads both files. Missing files wrap ErrCacheMissing, unreadable
// contents wrap ErrCacheInvalid.
func (s CacheStore) Load() (*EmbeddingCache, error) {
	matData, err := os.ReadFile(s.MatrixPath)
	if err != nil {
		return nil, cacheReadErr(s.MatrixPath, err)
	}
	docData, err := os.ReadFile(s.DocumentsPath)
	if err != nil {
		return nil, cacheReadErr(s.DocumentsPath, err)
	}
	matrix, err := decodeNPY(matData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheInvalid, s.MatrixPath, err)
	}
	var docs []string
	if err := json.Unmarshal(docData, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheInvalid, s.DocumentsPath, err)
	}
	return &EmbeddingCache{Documents: docs, Matrix: matrix}, nil
}

// Save writes both files, each through a temporary file and rename.
func (s CacheStore) Save(c *EmbeddingCache) error {
	if c == nil {
		return errors.New("nil embedding cache")
	}
	matData, err := encodeNPY(c.Matrix)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	docData, err := json.Marshal(c.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := writeFileAtomic(s.MatrixPath, matData); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}
	if err := writeFileAtomic(s.DocumentsPath, docData); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

// Remove deletes both files. Files that are already gone are ignored.
func (s CacheStore) Remove() error {
	for _, p := range []string{s.MatrixPath, s.DocumentsPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func cacheReadErr(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrCacheMissing, path)
	}
	return fmt.Errorf("%w: read %s: %v", ErrCacheInvalid, path, err)
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// encodeNPY writes a 2-D little-endian float32 array in NPY format 1.0.
func encodeNPY(matrix [][]float32) ([]byte, error) {
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}
	for i, row := range matrix {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	// magic(6) + version(2) + header length(2) + header, padded to 64 bytes with a trailing newline.
	total := len(npyMagic) + 4 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := bytes.NewBuffer(make([]byte, 0, len(npyMagic)+4+len(header)+rows*cols*4))
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	word := make([]byte, 4)
	for _, row := range matrix {
		for _, v := range row {
			binary.LittleEndian.PutUint32(word, math.Float32bits(v))
			buf.Write(word)
		}
	}
	return buf.Bytes(), nil
}

// decodeNPY reads a C-ordered 2-D '<f4' or '<f8' array.
func decodeNPY(data []byte) ([][]float32, error) {
	if len(data) < len(npyMagic)+4 || !bytes.Equal(data[:len(npyMagic)], npyMagic) {
		return nil, errors.New("not an npy file")
	}
	major := data[len(npyMagic)]
	off := len(npyMagic) + 2
	var headerLen int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
	case 2, 3:
		if len(data) < off+4 {
			return nil, errors.New("npy header truncated")
		}
		headerLen = int(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	if len(data) < off+headerLen {
		return nil, errors.New("npy header truncated")
	}
	header := string(data[off : off+headerLen])
	body := data[off+headerLen:]

	descr := npyDescrRe.FindStringSubmatch(header)
	if descr == nil {
		return nil, errors.New("npy header has no descr")
	}
	if m := npyFortranRe.FindStringSubmatch(header); m == nil || m[1] != "False" {
		return nil, errors.New("npy array must be C ordered")
	}
	shapeMatch := npyShapeRe.FindStringSubmatch(header)
	if shapeMatch == nil {
		return nil, errors.New("npy header has no shape")
	}
	shape, err := parseShape(shapeMatch[1])
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("npy array must be 2-D, got %d-D", len(shape))
	}
	rows, cols := shape[0], shape[1]

	var width int
	switch descr[1] {
	case "<f4":
		width = 4
	case "<f8":
		width = 8
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", descr[1])
	}
	// Bound the shape by the body before multiplying so a corrupt header
	// cannot overflow the size or force a huge allocation.
	if cols == 0 && rows != 0 {
		return nil, fmt.Errorf("npy array has %d rows of zero width", rows)
	}
	if cols != 0 && rows > len(body)/width/cols {
		return nil, fmt.Errorf("npy shape (%d, %d) exceeds %d body bytes", rows, cols, len(body))
	}
	if len(body) != rows*cols*width {
		return nil, fmt.Errorf("npy body has %d bytes, want %d", len(body), rows*cols*width)
	}
	matrix := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		row := make([]float32, cols)
		for c := 0; c < cols; c++ {
			p := (r*cols + c) * width
			if width == 4 {
				row[c] = math.Float32frombits(binary.LittleEndian.Uint32(body[p : p+4]))
			} else {
				row[c] = float32(math.Float64frombits(binary.LittleEndian.Uint64(body[p : p+8])))
			}
		}
		matrix[r] = row
	}
	return matrix, nil
}

func parseShape(s string) ([]int, error) {
	var dims []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad npy shape %q", s)
		}
		dims = append(dims, n)
	}
	return dims, nil
}
