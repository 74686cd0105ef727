package zig

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"omibyte.io/svd2zig/device"
)

var memberLine = regexp.MustCompile(`^(_unused(\d+)|[A-Za-z_][A-Za-z0-9_]*): u(\d+) = (\d+),$`)

type chunk struct {
	name  string
	width uint32
	reset uint64
}

// parseLayout extracts the packed struct members, named and filler alike, in
// emission order.
func parseLayout(t *testing.T, output string) []chunk {
	t.Helper()
	var chunks []chunk
	inStruct := false
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "packed struct {") {
			inStruct = true
			continue
		}
		if line == "};" {
			inStruct = false
			continue
		}
		if !inStruct || strings.HasPrefix(line, "///") {
			continue
		}
		m := memberLine.FindStringSubmatch(line)
		if m == nil {
			t.Fatalf("unexpected struct member line %q", line)
		}
		width, err := strconv.ParseUint(m[3], 10, 32)
		if err != nil {
			t.Fatalf("bad width in %q: %v", line, err)
		}
		reset, err := strconv.ParseUint(m[4], 10, 64)
		if err != nil {
			t.Fatalf("bad reset in %q: %v", line, err)
		}
		chunks = append(chunks, chunk{name: m[1], width: uint32(width), reset: reset})
	}
	return chunks
}

func layoutRegisters() []*device.Register {
	regs := []*device.Register{
		rndRegister(),
		{
			Name:          "EMPTY",
			AddressOffset: u32(0),
			Size:          32,
			ResetValue:    0xA5A5A5A5,
		},
		{
			Name:          "SPLIT",
			AddressOffset: u32(0x20),
			Size:          32,
			ResetValue:    0xFFFF0001,
			Fields: []*device.Field{
				{Name: "LOW", BitOffset: u32(0), BitWidth: u32(1), RegisterResetValue: 0xFFFF0001},
				{Name: "MID", BitOffset: u32(3), BitWidth: u32(22), RegisterResetValue: 0xFFFF0001},
				{Name: "TOP", BitOffset: u32(31), BitWidth: u32(1), RegisterResetValue: 0xFFFF0001},
			},
		},
	}
	return regs
}

// Every emitted register covers bits 0..31 exactly once; shifting each
// chunk's reset back into position reproduces the register reset value.
func TestLayoutCoverageAndResetRoundTrip(t *testing.T) {
	for _, reg := range layoutRegisters() {
		reg := reg
		t.Run(reg.Name, func(t *testing.T) {
			got := render(t, func(g *ziggen, p *printer) {
				g.emitRegister(p, reg)
			})
			chunks := parseLayout(t, got)

			total := uint32(0)
			reset := uint64(0)
			for _, c := range chunks {
				if c.reset >= uint64(1)<<c.width {
					t.Errorf("chunk %s reset %d does not fit u%d", c.name, c.reset, c.width)
				}
				reset |= c.reset << total
				total += c.width
			}
			if total != 32 {
				t.Errorf("widths sum to %d, want 32", total)
			}
			if reset != uint64(reg.ResetValue) {
				t.Errorf("reconstructed reset %#x, want %#x", reset, reg.ResetValue)
			}
		})
	}
}

// Fillers never cross an 8-bit boundary: a chunk starting at s ends at or
// before the next multiple of 8 above s.
func TestLayoutChunkingRule(t *testing.T) {
	for _, reg := range layoutRegisters() {
		reg := reg
		t.Run(reg.Name, func(t *testing.T) {
			got := render(t, func(g *ziggen, p *printer) {
				g.emitRegister(p, reg)
			})
			for _, c := range parseLayout(t, got) {
				if !strings.HasPrefix(c.name, "_unused") {
					continue
				}
				start, err := strconv.ParseUint(strings.TrimPrefix(c.name, "_unused"), 10, 32)
				if err != nil {
					t.Fatalf("bad filler name %s: %v", c.name, err)
				}
				end := uint32(start) + c.width
				if next := (uint32(start)/8 + 1) * 8; end > next {
					t.Errorf("filler %s spans [%d:%d) across byte boundary %d", c.name, start, end, next)
				}
			}
		})
	}
}

// Named fields appear in strictly increasing bit offset order.
func TestLayoutFieldOrdering(t *testing.T) {
	reg := rndRegister()
	got := render(t, func(g *ziggen, p *printer) {
		g.emitRegister(p, reg)
	})

	cursor := uint32(0)
	for _, c := range parseLayout(t, got) {
		if strings.HasPrefix(c.name, "_unused") {
			cursor += c.width
			continue
		}
		var offset *uint32
		for _, f := range reg.Fields {
			if f.Name == c.name {
				offset = f.BitOffset
			}
		}
		if offset == nil {
			t.Fatalf("emitted field %s not found in model", c.name)
		}
		if *offset != cursor {
			t.Errorf("field %s emitted at bit %d, declared at %d", c.name, cursor, *offset)
		}
		cursor += c.width
	}
}
