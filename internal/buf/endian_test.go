package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}
	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U64LE(data); got != 0xefcdab8967452301 {
		t.Fatalf("U64LE = 0x%x, want 0xefcdab8967452301", got)
	}
	if got := I32LE(data); got != 0x67452301 {
		t.Fatalf("I32LE = 0x%x, want 0x67452301", got)
	}

	if got := U16BE(data); got != 0x0123 {
		t.Fatalf("U16BE = 0x%x, want 0x0123", got)
	}
	if got := U32BE(data); got != 0x01234567 {
		t.Fatalf("U32BE = 0x%x, want 0x01234567", got)
	}
	if got := U64BE(data); got != 0x0123456789abcdef {
		t.Fatalf("U64BE = 0x%x, want 0x0123456789abcdef", got)
	}

	full := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	}
	hi, lo := U128BE(full)
	if hi != 0x0001020304050607 || lo != 0x08090a0b0c0d0e0f {
		t.Fatalf("U128BE = %x,%x, want 0x0001020304050607,0x08090a0b0c0d0e0f", hi, lo)
	}

	buf16 := make([]byte, 2)
	PutU16BE(buf16, 0xABCD)
	if U16BE(buf16) != 0xABCD {
		t.Fatalf("PutU16BE/U16BE round trip failed: %x", buf16)
	}

	buf32 := make([]byte, 4)
	PutU32BE(buf32, 0xDEADBEEF)
	if U32BE(buf32) != 0xDEADBEEF {
		t.Fatalf("PutU32BE/U32BE round trip failed: %x", buf32)
	}

	buf64 := make([]byte, 8)
	PutU64BE(buf64, 0x0123456789ABCDEF)
	if U64BE(buf64) != 0x0123456789ABCDEF {
		t.Fatalf("PutU64BE/U64BE round trip failed: %x", buf64)
	}

	buf128 := make([]byte, 16)
	PutU128BE(buf128, 0x1111111111111111, 0x2222222222222222)
	hi, lo = U128BE(buf128)
	if hi != 0x1111111111111111 || lo != 0x2222222222222222 {
		t.Fatalf("PutU128BE/U128BE round trip failed: %x,%x", hi, lo)
	}

	buf24 := make([]byte, 3)
	PutU24BE(buf24, 0xABCDEF)
	if got := U24BE(buf24); got != 0xABCDEF {
		t.Fatalf("PutU24BE/U24BE round trip failed: got 0x%x", got)
	}

	short := []byte{0xAA}
	if U16LE(short) != 0 || U16BE(short) != 0 {
		t.Fatalf("U16 short reads should return 0")
	}
	if U32LE(short) != 0 || U32BE(short) != 0 || U64LE(short) != 0 || I32LE(short) != 0 || U64BE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
	if hi, lo := U128BE(short); hi != 0 || lo != 0 {
		t.Fatalf("U128BE short read should return 0,0")
	}
	if U24BE(short) != 0 {
		t.Fatalf("U24BE short read should return 0")
	}
}
