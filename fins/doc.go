// Package fins provides the frame codec of the Omron FINS (Factory Interface Network Service)
// protocol used to communicate with programmable logic controllers.
//
// The package is pure and stateless: it encodes typed commands into byte frames and decodes
// controller replies, leaving transport, sessions and request correlation to the finsudp package.
//
// Frame Layout:
// Every command and response starts with the same 12-byte header, all multi-byte fields of the
// payload are big-endian:
//
//	ICF | RSV | GCT | DNA | DA1 | DA2 | SNA | SA1 | SA2 | SID | MRC | SRC
//
// A response appends a main and a sub response code (MRES, SRES) followed by the
// command-specific payload. (0, 0) means success.
//
// Commands:
//   - IdentityReadCommand:  controller data read (0501), yields model and version strings.
//   - MemoryReadCommand:  memory area read (0101) of consecutive 16-bit words.
//   - MemoryWriteCommand:  memory area write (0102) of consecutive 16-bit words.
//
// Memory Areas:
// Areas are addressed by a single letter, case-insensitive, see ParseMemoryArea:
//
//	A -> 0xB3, C -> 0xB0, D -> 0x82, H -> 0xB2, W -> 0xB1
package fins
