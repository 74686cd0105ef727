// Package zig renders a device model as Zig source. Every register becomes
// a packed struct type describing its exact 32-bit layout plus a binding of
// the register name to a Register(T) helper at its absolute address. The
// generated file expects the downstream Zig support library to provide
// Register(T).init; nothing else is referenced.
package zig

import (
	"io"

	"golang.org/x/exp/slices"

	"omibyte.io/svd2zig/device"
	"omibyte.io/svd2zig/generator"
)

type ziggen struct {
	dev *device.Device
}

func NewGenerator(dev *device.Device) generator.Generator {
	return &ziggen{
		dev: dev,
	}
}

func (g *ziggen) Generate(w io.Writer) error {
	p := &printer{w: w}
	g.emitDevice(p, g.dev)
	return p.err
}

func (g *ziggen) emitDevice(p *printer, dev *device.Device) {
	p.printf("pub const device_name = \"%s\";\n", orUnknown(dev.Name))
	p.printf("pub const device_revision = \"%s\";\n", orUnknown(dev.Version))
	p.printf("pub const device_description = \"%s\";\n", orUnknown(dev.Description))

	if dev.CPU != nil {
		g.emitCPU(p, dev.CPU)
	}

	for _, periph := range dev.Peripherals {
		g.emitPeripheral(p, periph)
	}

	g.emitInterrupts(p, dev.Interrupts)
}

func (g *ziggen) emitCPU(p *printer, cpu *device.CPU) {
	p.line("pub const cpu = struct {")
	p.printf("pub const name = \"%s\";\n", orUnknown(cpu.Name))
	p.printf("pub const revision = \"%s\";\n", orUnknown(cpu.Revision))
	p.printf("pub const endian = \"%s\";\n", orUnknown(cpu.Endian))
	p.printf("pub const mpu_present = %t;\n", boolOrFalse(cpu.MPUPresent))
	p.printf("pub const fpu_present = %t;\n", boolOrFalse(cpu.FPUPresent))
	p.printf("pub const vendor_systick_config = %t;\n", boolOrFalse(cpu.VendorSystickConfig))
	if cpu.NVICPrioBits != nil {
		p.printf("pub const nvic_prio_bits = %d;\n", *cpu.NVICPrioBits)
	}
	p.line("};")
}

func (g *ziggen) emitPeripheral(p *printer, periph *device.Peripheral) {
	if !periph.Valid() {
		p.line("// Not enough info to print peripheral")
		return
	}

	p.printf("/// %s\n", orNoDescription(periph.Description))
	p.printf("pub const %s = struct {\n", periph.Name)
	p.printf("const base_address = %#x;\n", *periph.BaseAddress)
	for _, reg := range periph.Registers {
		g.emitRegister(p, reg)
	}
	p.line("};")
}

func (g *ziggen) emitInterrupts(p *printer, interrupts map[uint32]device.Interrupt) {
	// Collect into a slice sorted by interrupt number so the table is
	// deterministic regardless of map iteration order. Entries without a
	// number are skipped.
	irqs := make([]device.Interrupt, 0, len(interrupts))
	for _, irq := range interrupts {
		if irq.Value != nil {
			irqs = append(irqs, irq)
		}
	}
	slices.SortStableFunc(irqs, func(a, b device.Interrupt) bool {
		return *a.Value < *b.Value
	})

	p.line("pub const interrupts = struct {")
	for _, irq := range irqs {
		p.printf("pub const %s = %d;\n", irq.Name, *irq.Value)
	}
	p.line("};")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNoDescription(s string) string {
	if s == "" {
		return "No description"
	}
	return s
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}
