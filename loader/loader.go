// Package loader turns a decoded SVD document into a device model. It
// resolves derivedFrom peripherals by deep-copying their prototypes,
// collects interrupts into the device-level table, and rejects documents
// that would break the layout invariants the generators rely on.
package loader

import (
	"errors"
	"fmt"

	"omibyte.io/svd2zig/device"
	"omibyte.io/svd2zig/svd"
)

var (
	ErrUnknownPrototype        = errors.New("derived peripheral references an unknown prototype")
	ErrDerivationCycle         = errors.New("peripheral derivation contains a cycle")
	ErrDuplicateInterrupt      = errors.New("interrupt number declared twice with different names")
	ErrUnsupportedRegisterSize = errors.New("unsupported register size")
	ErrFieldOverlap            = errors.New("register fields overlap or exceed the register width")
)

// Load builds the device model from a decoded SVD document.
func Load(doc *svd.DeviceElement) (*device.Device, error) {
	dev := device.NewDevice()
	dev.Name = doc.Name
	dev.Version = doc.Version
	dev.Description = doc.Description
	dev.AddressUnitBits = scalar(doc.AddressUnitBits)
	dev.MaxBitWidth = scalar(doc.BitWidth)
	dev.RegisterSize = scalar(doc.RegisterSize)
	dev.ResetValue = scalar(doc.ResetValue)
	dev.ResetMask = scalar(doc.ResetMask)

	if doc.CPU != nil {
		dev.CPU = &device.CPU{
			Name:                doc.CPU.Name,
			Revision:            doc.CPU.Revision,
			Endian:              doc.CPU.Endian,
			MPUPresent:          flag(doc.CPU.MPUPresent),
			FPUPresent:          flag(doc.CPU.FPUPresent),
			NVICPrioBits:        scalar(doc.CPU.NVICPriorityBits),
			VendorSystickConfig: flag(doc.CPU.VendorSystickConfig),
		}
	}

	// Resolve prototypes before the peripherals derived from them, then
	// rebuild the document order for emission.
	order, err := derivationOrder(doc.Peripherals)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*device.Peripheral, len(doc.Peripherals.Elements))
	for _, i := range order {
		element := &doc.Peripherals.Elements[i]
		periph, err := loadPeripheral(doc, element, resolved)
		if err != nil {
			return nil, err
		}
		resolved[element.Name] = periph
	}

	for _, element := range doc.Peripherals.Elements {
		dev.Peripherals = append(dev.Peripherals, resolved[element.Name])
		if err := collectInterrupts(dev, element.Interrupts); err != nil {
			return nil, err
		}
	}

	return dev, nil
}

func loadPeripheral(doc *svd.DeviceElement, element *svd.PeripheralElement, resolved map[string]*device.Peripheral) (*device.Peripheral, error) {
	var periph *device.Peripheral
	if len(element.DerivedFrom) > 0 {
		proto, ok := resolved[element.DerivedFrom]
		if !ok {
			return nil, fmt.Errorf("%w: %s derivedFrom %s", ErrUnknownPrototype, element.Name, element.DerivedFrom)
		}
		periph = proto.Copy()
		periph.Name = element.Name
		// A derived register block keeps the prototype's registers but
		// belongs to the derived peripheral.
		for _, reg := range periph.Registers {
			reg.Peripheral = element.Name
			for _, field := range reg.Fields {
				field.Peripheral = element.Name
			}
		}
	} else {
		periph = &device.Peripheral{Name: element.Name}
	}

	// Apply the element's own values on top of whatever the prototype
	// provided.
	if len(element.Description) > 0 {
		periph.Description = element.Description
	}
	if len(element.Group) > 0 {
		periph.GroupName = element.Group
	}
	if element.BaseAddress != nil {
		periph.BaseAddress = scalar(element.BaseAddress)
	}
	if element.AddressBlock != nil {
		periph.AddressBlock = &device.AddressBlock{
			Offset: scalar(element.AddressBlock.Offset),
			Size:   scalar(element.AddressBlock.Size),
			Usage:  element.AddressBlock.Usage,
		}
	}

	if len(element.Registers.Elements) > 0 {
		periph.Registers = nil
		for i := range element.Registers.Elements {
			reg, err := loadRegister(doc, element, &element.Registers.Elements[i])
			if err != nil {
				return nil, err
			}
			periph.Registers = append(periph.Registers, reg)
		}
	}

	return periph, nil
}

func loadRegister(doc *svd.DeviceElement, parent *svd.PeripheralElement, element *svd.RegisterElement) (*device.Register, error) {
	reg := &device.Register{
		Peripheral:  parent.Name,
		Name:        element.Name,
		DisplayName: element.DisplayName,
		Description: element.Description,

		AddressOffset: scalar(element.AddressOffset),
		Size:          32,
	}

	// Registers inherit the device-wide defaults for size, reset value and
	// access when their own elements are absent.
	if size := firstOf(element.Size, doc.RegisterSize); size != nil {
		reg.Size = *size
	}
	if reg.Size != 32 {
		return nil, fmt.Errorf("%w: register %s.%s is %d bits wide", ErrUnsupportedRegisterSize, parent.Name, element.Name, reg.Size)
	}
	if reset := firstOf(element.ResetValue, doc.ResetValue); reset != nil {
		reg.ResetValue = *reset
	}
	if len(element.Access) > 0 {
		reg.Access = device.ParseAccess(element.Access)
	} else {
		reg.Access = device.ParseAccess(doc.DefaultAccess)
	}

	for _, fieldElement := range element.Fields.Elements {
		field := &device.Field{
			Peripheral:         parent.Name,
			Register:           element.Name,
			RegisterResetValue: reg.ResetValue,
			Name:               fieldElement.Name,
			Description:        fieldElement.Description,
			BitOffset:          scalar(fieldElement.BitOffset),
			BitWidth:           scalar(fieldElement.BitWidth),
			Access:             reg.Access,
		}
		if len(fieldElement.Access) > 0 {
			field.Access = device.ParseAccess(fieldElement.Access)
		}
		reg.Fields = append(reg.Fields, field)
	}

	if err := checkFieldRanges(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// checkFieldRanges rejects registers whose declared fields overlap or fall
// outside [0, 32). The generators assume these invariants and would emit a
// malformed layout otherwise.
func checkFieldRanges(reg *device.Register) error {
	var covered uint64
	for _, field := range reg.Fields {
		if field.BitOffset == nil || field.BitWidth == nil {
			// Incomplete fields degrade at emission time instead.
			continue
		}
		start, width := uint64(*field.BitOffset), uint64(*field.BitWidth)
		if width == 0 || start+width > 32 {
			return fmt.Errorf("%w: %s.%s field %s [%d:%d]", ErrFieldOverlap, reg.Peripheral, reg.Name, field.Name, start, start+width)
		}
		mask := (uint64(1)<<width - 1) << start
		if covered&mask != 0 {
			return fmt.Errorf("%w: %s.%s field %s", ErrFieldOverlap, reg.Peripheral, reg.Name, field.Name)
		}
		covered |= mask
	}
	return nil
}

func collectInterrupts(dev *device.Device, elements []svd.InterruptElement) error {
	for _, element := range elements {
		if element.Value == nil {
			continue
		}
		value := uint32(*element.Value)
		if existing, ok := dev.Interrupts[value]; ok {
			// Shared IRQ lines are re-declared by every peripheral on
			// them; only a conflicting name is an error.
			if existing.Name != element.Name {
				return fmt.Errorf("%w: %d is both %s and %s", ErrDuplicateInterrupt, value, existing.Name, element.Name)
			}
			continue
		}
		dev.Interrupts[value] = device.Interrupt{
			Name:        element.Name,
			Description: element.Description,
			Value:       &value,
		}
	}
	return nil
}

func scalar(v *svd.Integer) *uint32 {
	if v == nil {
		return nil
	}
	u := uint32(*v)
	return &u
}

func flag(v *svd.Bool) *bool {
	if v == nil {
		return nil
	}
	b := bool(*v)
	return &b
}

func firstOf(values ...*svd.Integer) *uint32 {
	for _, v := range values {
		if v != nil {
			return scalar(v)
		}
	}
	return nil
}
