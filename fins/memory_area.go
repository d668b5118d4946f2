package fins

import "fmt"

// MemoryArea is the one-byte wire code of a controller memory area, word access.
type MemoryArea byte

// Word access memory area codes.
const (
	AreaAuxiliary MemoryArea = 0xB3 // A
	AreaCIO       MemoryArea = 0xB0 // C
	AreaDM        MemoryArea = 0x82 // D
	AreaHolding   MemoryArea = 0xB2 // H
	AreaWork      MemoryArea = 0xB1 // W
)

var areaLetters = map[MemoryArea]byte{
	AreaAuxiliary: 'A',
	AreaCIO:       'C',
	AreaDM:        'D',
	AreaHolding:   'H',
	AreaWork:      'W',
}

// ParseMemoryArea maps a memory area letter to its wire code. The letter is case-insensitive.
//
// It returns ErrInvalidMemoryArea for an unrecognized letter.
func ParseMemoryArea(letter byte) (MemoryArea, error) {
	switch letter {
	case 'A', 'a':
		return AreaAuxiliary, nil
	case 'C', 'c':
		return AreaCIO, nil
	case 'D', 'd':
		return AreaDM, nil
	case 'H', 'h':
		return AreaHolding, nil
	case 'W', 'w':
		return AreaWork, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidMemoryArea, letter)
}

// Letter returns the upper-case letter of the area, or 0 for an unknown code.
func (a MemoryArea) Letter() byte {
	return areaLetters[a]
}

// Valid reports whether a is one of the known word access areas.
func (a MemoryArea) Valid() bool {
	_, ok := areaLetters[a]
	return ok
}

func (a MemoryArea) String() string {
	if l, ok := areaLetters[a]; ok {
		return string(l)
	}

	return fmt.Sprintf("0x%02X", byte(a))
}
