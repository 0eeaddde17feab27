package loader

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errTruncatedGLB       = errors.New("truncated GLB data")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorOutOfRange = errors.New("accessor reads past the end of its buffer")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser decodes a glTF 2.0 asset and reads typed accessor data out of its buffers.
type gltfParser interface {
	// Parse reads and decodes the asset at path. External buffers are resolved relative to it.
	//
	// Parameters:
	//   - path: the .gltf or .glb file path
	//
	// Returns:
	//   - error: an error if the file cannot be read or is not valid glTF 2.0
	Parse(path string) error

	// ParseBytes decodes an in-memory asset. Binary GLB is detected by its magic number.
	// External buffer URIs are resolved against baseDir.
	//
	// Parameters:
	//   - data: the raw file contents
	//   - baseDir: directory used for relative buffer URIs
	//
	// Returns:
	//   - error: an error if the data is not valid glTF 2.0
	ParseBytes(data []byte, baseDir string) error

	// Document returns the decoded document, or nil before a successful parse.
	//
	// Returns:
	//   - *gltfDocument: the document
	Document() *gltfDocument

	// ReadFloats reads every element of an accessor as float32 components, converting
	// normalized integer components to [0, 1] or [-1, 1] as glTF requires.
	//
	// Parameters:
	//   - accessorIndex: index into the document's accessors
	//   - accessorType: the expected accessor type (SCALAR, VEC3, ...)
	//
	// Returns:
	//   - []float32: count * components values, tightly packed
	//   - error: an error if the accessor is missing, mistyped or out of bounds
	ReadFloats(accessorIndex int, accessorType string) ([]float32, error)

	ReadScalarAccessor(accessorIndex int) ([]float32, error)

	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	ReadVec4Accessor(accessorIndex int) ([][4]float32, error)

	ReadMat4Accessor(accessorIndex int) ([][16]float32, error)
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseBytes(data, filepath.Dir(path))
}

func (p *gltfParserImpl) ParseBytes(data []byte, baseDir string) error {
	p.baseDir = baseDir
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

func (p *gltfParserImpl) parseGLTF(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// parseGLB splits a binary container into its JSON and BIN chunks.
// Layout: 12-byte header (magic, version, length) then chunks of (length, type, payload).
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < gltfGLBHeaderSize {
		return errTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data[0:4]) != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if binary.LittleEndian.Uint32(data[4:8]) != gltfGLBVersion {
		return errInvalidGLBVersion
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) {
		return errTruncatedGLB
	}

	var jsonData, binData []byte
	for off := gltfGLBHeaderSize; off+8 <= total; {
		chunkLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
		chunkType := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += 8
		if chunkLen < 0 || off+chunkLen > total {
			return errTruncatedGLB
		}

		switch chunkType {
		case gltfGLBChunkJSON:
			jsonData = data[off : off+chunkLen]
		case gltfGLBChunkBIN:
			binData = data[off : off+chunkLen]
		}
		off += chunkLen
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseGLTF(jsonData)
}

func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			// only the first buffer may refer to the GLB BIN chunk
			if i != 0 || p.glbBinaryChunk == nil {
				return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
			}
			buf.Data = p.glbBinaryChunk
		} else {
			data, err := p.loadBufferURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return loadDataURI(uri)
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, filepath.FromSlash(uri)))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}
	return data, nil
}

func loadDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// --- Accessor reading ---

func (p *gltfParserImpl) ReadFloats(accessorIndex int, accessorType string) ([]float32, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &p.document.Accessors[accessorIndex]
	if acc.Type != accessorType {
		return nil, fmt.Errorf("accessor %d is %s, expected %s", accessorIndex, acc.Type, accessorType)
	}

	components := gltfAccessorTypeComponentCount(acc.Type)
	componentSize := gltfComponentTypeSize(acc.ComponentType)
	if components == 0 || componentSize == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported layout %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}

	out := make([]float32, acc.Count*components)
	// an accessor without a buffer view is all zeros (sparse data is not applied)
	if acc.BufferView == nil || acc.Count == 0 {
		return out, nil
	}

	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", accessorIndex, *acc.BufferView)
	}
	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("accessor %d: buffer %d out of range", accessorIndex, bv.Buffer)
	}
	buf := p.document.Buffers[bv.Buffer].Data

	elementSize := componentSize * components
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	end := start + (acc.Count-1)*stride + elementSize
	if start < 0 || end > len(buf) || end > bv.ByteOffset+bv.ByteLength {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorOutOfRange)
	}

	for i := range acc.Count {
		base := start + i*stride
		for c := range components {
			out[i*components+c] = gltfReadComponent(buf[base+c*componentSize:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadScalarAccessor(accessorIndex int) ([]float32, error) {
	return p.ReadFloats(accessorIndex, gltfAccessorTypeScalar)
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	flat, err := p.ReadFloats(accessorIndex, gltfAccessorTypeVec3)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		copy(out[i][:], flat[i*3:])
	}
	return out, nil
}

func (p *gltfParserImpl) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	flat, err := p.ReadFloats(accessorIndex, gltfAccessorTypeVec4)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, len(flat)/4)
	for i := range out {
		copy(out[i][:], flat[i*4:])
	}
	return out, nil
}

func (p *gltfParserImpl) ReadMat4Accessor(accessorIndex int) ([][16]float32, error) {
	flat, err := p.ReadFloats(accessorIndex, gltfAccessorTypeMat4)
	if err != nil {
		return nil, err
	}
	out := make([][16]float32, len(flat)/16)
	for i := range out {
		copy(out[i][:], flat[i*16:])
	}
	return out, nil
}

// gltfReadComponent decodes one little-endian component. Normalized integers map onto
// [0, 1] (unsigned) or [-1, 1] (signed) following the glTF 2.0 conversion rules.
func gltfReadComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	case gltfComponentTypeUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltfComponentTypeShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case gltfComponentTypeUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}

func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
