// Package device holds the in-memory model of a microcontroller that the
// generators render. The loader owns construction; generators only read it,
// so the model carries plain values and no references back to the SVD
// document it came from.
package device

// Access is the hardware permission on a register or field.
type Access int

const (
	AccessReadWrite Access = iota
	AccessReadOnly
	AccessWriteOnly
)

// ParseAccess maps the SVD access strings to the three-valued enumeration.
// Unknown or empty strings map to read-write.
func ParseAccess(s string) Access {
	switch s {
	case "read-only":
		return AccessReadOnly
	case "write-only":
		return AccessWriteOnly
	default:
		return AccessReadWrite
	}
}

type Device struct {
	Name        string
	Version     string
	Description string

	CPU *CPU

	AddressUnitBits *uint32
	MaxBitWidth     *uint32

	// Device-wide register defaults. Individual registers inherit the size
	// and reset value when their own elements are absent; the reset mask is
	// recorded here only and not applied to registers.
	RegisterSize *uint32
	ResetValue   *uint32
	ResetMask    *uint32

	Peripherals []*Peripheral

	// Interrupts is keyed by interrupt number. Population order is
	// irrelevant; the generator sorts by number before emission.
	Interrupts map[uint32]Interrupt
}

func NewDevice() *Device {
	return &Device{
		Interrupts: map[uint32]Interrupt{},
	}
}

type CPU struct {
	Name     string
	Revision string
	Endian   string

	MPUPresent          *bool
	FPUPresent          *bool
	NVICPrioBits        *uint32
	VendorSystickConfig *bool
}

type Interrupt struct {
	Name        string
	Description string
	Value       *uint32
}

type Peripheral struct {
	Name        string
	GroupName   string
	Description string

	BaseAddress  *uint32
	AddressBlock *AddressBlock

	Registers []*Register
}

// Valid reports whether the peripheral carries enough information to be
// emitted: a name and a base address.
func (p *Peripheral) Valid() bool {
	return p.Name != "" && p.BaseAddress != nil
}

// AddressBlock describes the address span a peripheral occupies. It is
// informational; no generator currently renders it.
type AddressBlock struct {
	Offset *uint32
	Size   *uint32
	Usage  string
}

type Register struct {
	// Peripheral is the name of the containing peripheral, copied here so
	// a register never needs to walk upward.
	Peripheral string

	Name        string
	DisplayName string
	Description string

	AddressOffset *uint32
	Size          uint32
	ResetValue    uint32
	Access        Access

	Fields []*Field
}

// Valid reports whether the register carries enough information to be
// emitted: a name and an address offset.
func (r *Register) Valid() bool {
	return r.Name != "" && r.AddressOffset != nil
}

type Field struct {
	// Peripheral and Register name the owners; both are value copies.
	Peripheral string
	Register   string

	// RegisterResetValue duplicates the containing register's reset value
	// so a field can compute its own reset slice locally.
	RegisterResetValue uint32

	Name        string
	Description string

	BitOffset *uint32
	BitWidth  *uint32
	Access    Access
}

// Valid reports whether the field carries enough information to be emitted:
// a name, a bit offset and a bit width.
func (f *Field) Valid() bool {
	return f.Name != "" && f.BitOffset != nil && f.BitWidth != nil
}
