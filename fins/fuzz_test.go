package fins

import (
	"testing"
)

// FuzzDecodeCommand fuzzes the command decoder.
// DecodeCommand must never panic, and every accepted frame must re-encode to the same bytes.
func FuzzDecodeCommand(f *testing.F) {
	// Seed: memory read C100, 2 words
	f.Add([]byte{
		0x80, 0x00, 0x02, 0x00, 0x0A, 0x00, 0x00, 0x63, 0x00, 0x02, 0x01, 0x01,
		0xB0, 0x00, 0x64, 0x00, 0x00, 0x02,
	})

	// Seed: memory write C101 = 42
	f.Add([]byte{
		0x80, 0x00, 0x02, 0x00, 0x0A, 0x00, 0x00, 0x63, 0x00, 0x03, 0x01, 0x02,
		0xB0, 0x00, 0x65, 0x00, 0x00, 0x01, 0x00, 0x2A,
	})

	// Seed: controller data read
	f.Add([]byte{
		0x80, 0x00, 0x02, 0x00, 0x0A, 0x00, 0x00, 0x63, 0x00, 0x04, 0x05, 0x01,
		0x00,
	})

	// Seed: write with a count larger than the payload
	f.Add([]byte{
		0x80, 0x00, 0x02, 0x00, 0x0A, 0x00, 0x00, 0x63, 0x00, 0x03, 0x01, 0x02,
		0xB0, 0x00, 0x65, 0x00, 0xFF, 0xFF, 0x00,
	})

	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		cmd, err := DecodeCommand(data)
		if err != nil {
			return
		}

		frame, err := cmd.MarshalBinary()
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if string(frame) != string(data) {
			t.Fatalf("round trip mismatch: %X != %X", frame, data)
		}
	})
}

// FuzzDecodeResponse fuzzes the reply decoder and its payload accessors.
func FuzzDecodeResponse(f *testing.F) {
	f.Add([]byte{
		0xC0, 0x00, 0x02, 0x00, 0x63, 0x00, 0x00, 0x0A, 0x00, 0x02, 0x01, 0x01,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x02,
	}, 2)
	f.Add([]byte{0xC0, 0x00}, 0)

	f.Fuzz(func(t *testing.T, data []byte, count int) {
		resp, err := DecodeResponse(data)
		if err != nil {
			return
		}
		if count < 0 || count > MaxReadWords {
			count = 0
		}

		_ = resp.Err()
		_, _ = resp.Words(count)
		_, _ = resp.ControllerIdentity()
	})
}
