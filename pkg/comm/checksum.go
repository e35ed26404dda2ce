package comm

// Checksum calculates the XOR of all bytes.
func Checksum(data []byte) byte {
	var chk byte
	for _, b := range data {
		chk ^= b
	}
	return chk
}
