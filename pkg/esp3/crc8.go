package esp3

// CRC8 with polynomial 0x07, as used by both ESP3 checksums
// (header CRC and data CRC).

const crc8Poly = 0x07

var crc8Table [256]byte

func init() {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Poly
			} else {
				crc <<= 1
			}
		}
		crc8Table[i] = crc
	}
}

// CRC8 computes the ESP3 checksum over data
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// crc8Pair computes the checksum over two concatenated slices without
// allocating a joined buffer.
func crc8Pair(a, b []byte) byte {
	var crc byte
	for _, v := range a {
		crc = crc8Table[crc^v]
	}
	for _, v := range b {
		crc = crc8Table[crc^v]
	}
	return crc
}
