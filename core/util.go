package core

// int64ToBytes/bytesToInt64 pack counters into the flat byte buffers
// snapshotItem carries, little-endian, matching the width convention used
// throughout snapshot.go.
func int64ToBytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = uint8(v >> (8 * i))
	}
	return b
}

func bytesToInt64(b []byte) int64 {
	var v int64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= int64(b[i]) << (8 * i)
	}
	return v
}
