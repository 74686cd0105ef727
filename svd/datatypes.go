package svd

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Integer is a scalar SVD value. Vendor files write these as decimal,
// 0x-prefixed hexadecimal or #-prefixed binary (with 'x' don't-care bits).
type Integer uint64

func (h *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}

	value, err := ParseInteger(v)
	if err != nil {
		return err
	}
	*h = Integer(value)
	return nil
}

func ParseInteger(v string) (uint64, error) {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X"):
		return strconv.ParseUint(v[2:], 16, 64)
	case strings.HasPrefix(v, "#"):
		// Binary #1011 or #1x0x "do not care" format
		s := []byte(v[1:])
		for i, b := range s {
			if b == 'x' || b == 'X' {
				s[i] = '0'
			}
		}
		return strconv.ParseUint(string(s), 2, 64)
	default:
		return strconv.ParseUint(v, 10, 64)
	}
}

// Bool is a boolean SVD value. Vendor files write these as true/false or 1/0.
type Bool bool

func (b *Bool) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}

	switch strings.TrimSpace(v) {
	case "true", "1":
		*b = true
	case "false", "0", "":
		*b = false
	default:
		return &strconv.NumError{Func: "ParseBool", Num: v, Err: strconv.ErrSyntax}
	}
	return nil
}
