package device

// Deep copies. SVD expresses families of identical peripherals through
// derivedFrom; the loader resolves a derived peripheral by copying its
// prototype and applying the overrides on top. The copies share no storage
// with their source, so mutating one never leaks into the other.

func copyScalar[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (p *Peripheral) Copy() *Peripheral {
	c := &Peripheral{
		Name:        p.Name,
		GroupName:   p.GroupName,
		Description: p.Description,
		BaseAddress: copyScalar(p.BaseAddress),
	}
	if p.AddressBlock != nil {
		c.AddressBlock = &AddressBlock{
			Offset: copyScalar(p.AddressBlock.Offset),
			Size:   copyScalar(p.AddressBlock.Size),
			Usage:  p.AddressBlock.Usage,
		}
	}
	if p.Registers != nil {
		c.Registers = make([]*Register, len(p.Registers))
		for i, r := range p.Registers {
			c.Registers[i] = r.Copy()
		}
	}
	return c
}

func (r *Register) Copy() *Register {
	c := &Register{
		Peripheral:    r.Peripheral,
		Name:          r.Name,
		DisplayName:   r.DisplayName,
		Description:   r.Description,
		AddressOffset: copyScalar(r.AddressOffset),
		Size:          r.Size,
		ResetValue:    r.ResetValue,
		Access:        r.Access,
	}
	if r.Fields != nil {
		c.Fields = make([]*Field, len(r.Fields))
		for i, f := range r.Fields {
			c.Fields[i] = f.Copy()
		}
	}
	return c
}

func (f *Field) Copy() *Field {
	return &Field{
		Peripheral:         f.Peripheral,
		Register:           f.Register,
		RegisterResetValue: f.RegisterResetValue,
		Name:               f.Name,
		Description:        f.Description,
		BitOffset:          copyScalar(f.BitOffset),
		BitWidth:           copyScalar(f.BitWidth),
		Access:             f.Access,
	}
}
