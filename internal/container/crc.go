package container

// crcSeed начальное значение CRC секций реплея
const crcSeed = 0xEFCBF201

const crcPoly = 0x04C11DB7

var crcTable = makeCRCTable()

// makeCRCTable строит таблицу CRC-32 со старшим битом вперёд
func makeCRCTable() [256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ crcPoly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}

func crcWithSeed(seed uint32, data []byte) uint32 {
	crc := ^seed
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return ^crc
}

// CRC считает контрольную сумму секции так же, как движок при записи реплея
func CRC(data []byte) uint32 {
	return crcWithSeed(crcSeed, data)
}
