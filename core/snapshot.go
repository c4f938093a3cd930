package core

import (
	"encoding/binary"
	"hash/crc32"
)

// snapshotMagic/snapshotVersion identify the container format.
var snapshotMagic = [4]byte{'V', 'C', '6', '4'}

const snapshotVersion uint16 = 1

// snapshotItem is one leaf of the recursive component tree walk, shared
// by serialization and reset: Machine.Reset clears every item through
// this same list unless keepOnReset marks it as surviving a hard reset
// (ROM contents, the drive's head position and disk-substrate state).
type snapshotItem struct {
	name        string
	data        []byte
	width       int // 0 means "use len(data)"; set explicitly for fixed-width scalars
	keepOnReset bool

	// restore, when set, receives the restored bytes instead of them being
	// copied into data directly. Array-backed items (register files, RAM)
	// leave this nil since data already aliases the live backing array;
	// scalar fields that only have a throwaway copy in data (a register,
	// a counter) must supply this to actually write the value back.
	restore func([]byte)
}

// snapshotWalker is implemented by every component with persistent
// state; Machine composes the whole tree by collecting each component's
// items in a fixed traversal order.
type snapshotWalker interface {
	snapshotItems() []snapshotItem
}

// Serialize writes the machine's full state as a flat, versioned,
// checksummed byte stream: magic, version, item count, then each item
// as (name length, name, data length, data), followed by a trailing
// CRC32 over everything before it. The container fields are big-endian;
// item payloads keep their component's own encoding (counters packed by
// int64ToBytes are little-endian).
func (m *Machine) Serialize() ([]byte, error) {
	items := m.snapshotItems()

	buf := make([]byte, 0, 4096)
	buf = append(buf, snapshotMagic[:]...)
	buf = appendUint16(buf, snapshotVersion)
	buf = appendUint32(buf, uint32(len(items)))

	for _, it := range items {
		buf = appendUint16(buf, uint16(len(it.name)))
		buf = append(buf, []byte(it.name)...)
		buf = appendUint32(buf, uint32(len(it.data)))
		buf = append(buf, it.data...)
	}

	checksum := crc32.ChecksumIEEE(buf)
	buf = appendUint32(buf, checksum)
	return buf, nil
}

// Deserialize restores machine state from a Serialize'd buffer,
// verifying the magic, version and checksum before touching any
// component.
func (m *Machine) Deserialize(buf []byte) error {
	if len(buf) < 4+2+4+4 {
		return ErrSnapshotTooShort
	}

	if string(buf[0:4]) != string(snapshotMagic[:]) {
		return ErrBadMagic
	}

	payload := buf[:len(buf)-4]
	wantChecksum := binary.BigEndian.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(payload) != wantChecksum {
		return ErrChecksumMismatch
	}

	version := binary.BigEndian.Uint16(buf[4:6])
	if version != snapshotVersion {
		return ErrVersionMismatch
	}

	count := binary.BigEndian.Uint32(buf[6:10])
	items := m.snapshotItems()
	if int(count) != len(items) {
		return ErrComponentCountMismatch
	}

	offset := 10
	restored := make(map[string][]byte, count)
	for i := uint32(0); i < count; i++ {
		if offset+2 > len(payload) {
			return ErrSnapshotTooShort
		}
		nameLen := int(binary.BigEndian.Uint16(payload[offset : offset+2]))
		offset += 2
		if offset+nameLen > len(payload) {
			return ErrSnapshotTooShort
		}
		name := string(payload[offset : offset+nameLen])
		offset += nameLen

		if offset+4 > len(payload) {
			return ErrSnapshotTooShort
		}
		dataLen := int(binary.BigEndian.Uint32(payload[offset : offset+4]))
		offset += 4
		if offset+dataLen > len(payload) {
			return ErrSnapshotTooShort
		}
		restored[name] = payload[offset : offset+dataLen]
		offset += dataLen
	}

	for _, it := range items {
		data, ok := restored[it.name]
		if !ok || len(data) != len(it.data) {
			return ErrComponentCountMismatch
		}
		if it.restore != nil {
			it.restore(data)
		} else {
			copy(it.data, data)
		}
	}
	return nil
}

// VerifyState re-derives the checksum of a buffer without restoring any
// state, for callers that want to validate a snapshot file before
// committing to load it.
func (m *Machine) VerifyState(buf []byte) error {
	if len(buf) < 4+2+4+4 {
		return ErrSnapshotTooShort
	}
	if string(buf[0:4]) != string(snapshotMagic[:]) {
		return ErrBadMagic
	}
	payload := buf[:len(buf)-4]
	wantChecksum := binary.BigEndian.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(payload) != wantChecksum {
		return ErrChecksumMismatch
	}
	version := binary.BigEndian.Uint16(buf[4:6])
	if version != snapshotVersion {
		return ErrVersionMismatch
	}
	return nil
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}
