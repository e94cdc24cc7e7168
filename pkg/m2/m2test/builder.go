// Package m2test assembles synthetic model buffers for tests.
package m2test

import (
	"encoding/binary"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/pkg/m2"
)

// BoneKeys are the per-sequence keyframes written for one bone's
// translation and scale tracks.
type BoneKeys struct {
	Translation [][]mgl32.Vec3
	Scale       [][]mgl32.Vec3
}

// Builder lays out a model: the header first, then every array in turn.
// Descriptor fields set on Bones and Attachments are overwritten.
type Builder struct {
	Version          uint32
	Name             string
	Chunked          bool
	Bones            []m2.Bone
	Keys             map[int]BoneKeys
	Attachments      []m2.Attachment
	AttachmentLookup []uint16
	Sequences        []m2.Sequence
	Textures         []string
}

type layout struct {
	buf []byte
}

func (l *layout) mark() uint32 { return uint32(len(l.buf)) }

func appendArray[T any](l *layout, items []T) m2.Array[T] {
	if len(items) == 0 {
		return m2.Array[T]{}
	}
	off := l.mark()
	l.buf, _ = binary.Append(l.buf, binary.LittleEndian, items)
	return m2.Array[T]{Count: uint32(len(items)), Offset: off}
}

func appendNested[T any](l *layout, seqs [][]T) m2.Array[m2.Array[T]] {
	inner := make([]m2.Array[T], len(seqs))
	for i, keys := range seqs {
		inner[i] = appendArray(l, keys)
	}
	return appendArray(l, inner)
}

// Bytes encodes the model.
func (b *Builder) Bytes() []byte {
	l := &layout{buf: make([]byte, m2.HeaderSize)}

	h := m2.Header{Version: b.Version}
	copy(h.Magic[:], m2.MagicMD20)
	if h.Version == 0 {
		h.Version = m2.MinVersion
	}
	if b.Name != "" {
		h.Name = appendArray(l, []byte(b.Name+"\x00"))
	}

	bones := slices.Clone(b.Bones)
	for i := range bones {
		keys := b.Keys[i]
		bones[i].Translation.Values = appendNested(l, keys.Translation)
		bones[i].Scale.Values = appendNested(l, keys.Scale)
	}
	h.Bones = appendArray(l, bones)
	h.Attachments = appendArray(l, b.Attachments)
	h.AttachmentLookup = appendArray(l, b.AttachmentLookup)
	h.Sequences = appendArray(l, b.Sequences)

	texs := make([]m2.Texture, len(b.Textures))
	for i, name := range b.Textures {
		if name != "" {
			texs[i].Filename = appendArray(l, []byte(name+"\x00"))
		}
	}
	h.Textures = appendArray(l, texs)

	if _, err := binary.Encode(l.buf[:m2.HeaderSize], binary.LittleEndian, &h); err != nil {
		panic(err)
	}
	if !b.Chunked {
		return l.buf
	}
	out := []byte(m2.MagicMD21)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(l.buf)))
	return append(out, l.buf...)
}

// Identity returns n bones chained root to leaf with zero pivots.
func Identity(n int) []m2.Bone {
	bones := make([]m2.Bone, n)
	for i := range bones {
		bones[i].KeyBoneID = -1
		bones[i].ParentBone = int16(i - 1)
	}
	return bones
}

// Attach adds an attachment on bone at pos and points the lookup slot for
// id at it. Unused lookup slots are 0xFFFF.
func (b *Builder) Attach(id m2.AttachmentID, bone int16, pos mgl32.Vec3) *Builder {
	for len(b.AttachmentLookup) <= int(id) {
		b.AttachmentLookup = append(b.AttachmentLookup, 0xFFFF)
	}
	b.AttachmentLookup[id] = uint16(len(b.Attachments))
	b.Attachments = append(b.Attachments, m2.Attachment{ID: uint32(id), Bone: bone, Position: pos})
	return b
}
