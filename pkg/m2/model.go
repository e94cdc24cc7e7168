package m2

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Model is a parsed model buffer. Every view it returns aliases the
// buffer, so the buffer must stay alive and unmodified while the model is
// in use.
type Model struct {
	data    []byte
	header  Header
	chunked bool
}

// Parse decodes the header of an MD20 buffer, or of the MD21 chunk in a
// chunked file. Array descriptors are checked lazily when resolved.
func Parse(data []byte) (*Model, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	m := &Model{data: data}
	if string(data[:4]) == MagicMD21 {
		body, err := findChunk(data, MagicMD21)
		if err != nil {
			return nil, err
		}
		m.data = body
		m.chunked = true
	}
	if len(m.data) < 4 || string(m.data[:4]) != MagicMD20 {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, m.data[:min(4, len(m.data))])
	}
	if len(m.data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(m.data))
	}
	if _, err := binary.Decode(m.data[:HeaderSize], binary.LittleEndian, &m.header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if v := m.header.Version; v < MinVersion || v > MaxVersion {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrUnsupportedVersion, v, MinVersion, MaxVersion)
	}
	return m, nil
}

// findChunk walks {magic, size, body} chunks and returns the body of the
// first chunk with the given magic.
func findChunk(data []byte, magic string) ([]byte, error) {
	var off uint64
	for off+8 <= uint64(len(data)) {
		id := string(data[off : off+4])
		size := uint64(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		start := off + 8
		end := start + size
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: chunk %q ends at %d, file is %d bytes", ErrTruncated, id, end, len(data))
		}
		if id == magic {
			return data[start:end], nil
		}
		off = end
	}
	return nil, fmt.Errorf("%w: no %s chunk", ErrBadMagic, magic)
}

func (m *Model) Header() *Header { return &m.header }

// Data is the MD20 buffer all descriptors are relative to.
func (m *Model) Data() []byte { return m.data }

// Chunked reports whether the model came from an MD21 chunked file.
func (m *Model) Chunked() bool { return m.chunked }

func (m *Model) Version() uint32 { return m.header.Version }

// Name returns the internal model name.
func (m *Model) Name() (string, error) {
	v, err := Resolve(m.data, m.header.Name)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	return string(bytes.TrimRight(v.data, "\x00")), nil
}

func (m *Model) Bones() (View[Bone], error) {
	v, err := Resolve(m.data, m.header.Bones)
	if err != nil {
		return v, fmt.Errorf("bones: %w", err)
	}
	return v, nil
}

func (m *Model) Attachments() (View[Attachment], error) {
	v, err := Resolve(m.data, m.header.Attachments)
	if err != nil {
		return v, fmt.Errorf("attachments: %w", err)
	}
	return v, nil
}

func (m *Model) AttachmentLookup() (View[uint16], error) {
	v, err := Resolve(m.data, m.header.AttachmentLookup)
	if err != nil {
		return v, fmt.Errorf("attachment lookup: %w", err)
	}
	return v, nil
}

func (m *Model) Sequences() (View[Sequence], error) {
	v, err := Resolve(m.data, m.header.Sequences)
	if err != nil {
		return v, fmt.Errorf("sequences: %w", err)
	}
	return v, nil
}

func (m *Model) KeyBoneLookup() (View[uint16], error) {
	v, err := Resolve(m.data, m.header.KeyBoneLookup)
	if err != nil {
		return v, fmt.Errorf("key bone lookup: %w", err)
	}
	return v, nil
}

// TextureNames returns the file name of every texture. Hardcoded textures
// have an empty name.
func (m *Model) TextureNames() ([]string, error) {
	texs, err := Resolve(m.data, m.header.Textures)
	if err != nil {
		return nil, fmt.Errorf("textures: %w", err)
	}
	names := make([]string, 0, texs.Len())
	for i, tex := range texs.All() {
		v, err := Resolve(m.data, tex.Filename)
		if err != nil {
			return nil, fmt.Errorf("texture %d name: %w", i, err)
		}
		names = append(names, string(bytes.TrimRight(v.data, "\x00")))
	}
	return names, nil
}
