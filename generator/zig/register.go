package zig

import (
	"golang.org/x/exp/slices"

	"omibyte.io/svd2zig/device"
)

// Register emission. The packed struct mirrors the hardware layout bit for
// bit: every one of the 32 bits belongs to either a named field or a
// synthesized _unused filler, walked LSB to MSB. Gaps are chunked so that no
// filler crosses an 8-bit boundary; Zig's packed struct layout historically
// miscompiled wide fillers straddling bytes.

func (g *ziggen) emitRegister(p *printer, reg *device.Register) {
	if !reg.Valid() {
		p.line("// Not enough info to print register value")
		return
	}

	// Sort ascending by bit offset. Fields with no offset land at the
	// front where the walk below rejects them before anything is emitted.
	slices.SortStableFunc(reg.Fields, func(a, b *device.Field) bool {
		if a.BitOffset == nil {
			return b.BitOffset != nil
		}
		if b.BitOffset == nil {
			return false
		}
		return *a.BitOffset < *b.BitOffset
	})

	for _, field := range reg.Fields {
		if field.BitOffset == nil || field.BitWidth == nil {
			p.line("// Not enough info to print register")
			return
		}
	}

	p.printf("/// %s\n", displayName(reg))
	p.printf("pub const %s_val = packed struct {\n", reg.Name)

	cursor := uint32(0)
	for _, field := range reg.Fields {
		if *field.BitOffset > cursor {
			g.emitUnused(p, cursor, *field.BitOffset, reg.ResetValue)
		}
		g.emitField(p, field)
		cursor = *field.BitOffset + *field.BitWidth
	}
	if cursor < registerWidth {
		g.emitUnused(p, cursor, registerWidth, reg.ResetValue)
	}

	p.line("};")
	p.printf("/// %s\n", orNoDescription(reg.Description))
	p.printf("pub const %s = Register(%s_val).init(base_address + %#x);\n", reg.Name, reg.Name, *reg.AddressOffset)
}

// registerWidth is the only register size the emitter understands; the
// loader rejects devices declaring anything else.
const registerWidth = 32

func (g *ziggen) emitField(p *printer, field *device.Field) {
	if !field.Valid() {
		p.line("// Not enough info to print field")
		return
	}

	start := *field.BitOffset
	width := *field.BitWidth
	p.printf("/// %s [%d:%d]\n", field.Name, start, start+width-1)
	p.printf("/// %s\n", orNoDescription(field.Description))
	p.printf("%s: u%d = %d,\n", field.Name, width, resetSlice(start, width, uint64(field.RegisterResetValue)))
}

// emitUnused covers the gap [first, last) with filler fields. A single
// comment names the whole gap; the fillers themselves are split at 8-bit
// boundaries so each chunk ends at or before the next multiple of 8.
func (g *ziggen) emitUnused(p *printer, first, last uint32, reset uint32) {
	p.printf("/// unused [%d:%d]\n", first, last-1)
	for start := first; start < last; {
		end := (start/8 + 1) * 8
		if end > last {
			end = last
		}
		p.printf("_unused%d: u%d = %d,\n", start, end-start, resetSlice(start, end-start, uint64(reset)))
		start = end
	}
}

// resetSlice extracts the reset value of the chunk [start, start+width).
// The mask is computed in 64 bits so a full 32-bit wide field works.
func resetSlice(start, width uint32, reset uint64) uint64 {
	return (reset >> start) & (uint64(1)<<width - 1)
}

func displayName(reg *device.Register) string {
	if reg.DisplayName != "" {
		return reg.DisplayName
	}
	return reg.Name
}
