package cloak

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorRange 视为 "透明" 的关键色范围，上下界都包含在内
type ColorRange struct {
	Lower HSV
	Upper HSV
}

// DefaultColorRange 近白色布料：低饱和、高明度，任意色相
func DefaultColorRange() ColorRange {
	return ColorRange{
		Lower: HSV{H: 0, S: 0, V: 200},
		Upper: HSV{H: HueMax, S: 40, V: 255},
	}
}

func (r ColorRange) Validate() error {
	if r.Lower.H > HueMax || r.Upper.H > HueMax {
		return fmt.Errorf("hue bound exceeds %d (lower=%d upper=%d): %w", HueMax, r.Lower.H, r.Upper.H, ErrInvalidInput)
	}
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("lower bound %v exceeds upper bound %v: %w", r.Lower, r.Upper, ErrInvalidInput)
	}
	return nil
}

func (r ColorRange) Contains(p HSV) bool {
	return p.H >= r.Lower.H && p.H <= r.Upper.H &&
		p.S >= r.Lower.S && p.S <= r.Upper.S &&
		p.V >= r.Lower.V && p.V <= r.Upper.V
}

func (p HSV) String() string {
	return fmt.Sprintf("%d,%d,%d", p.H, p.S, p.V)
}

// ParseHSV 解析 "h,s,v" 形式的三元组，例如 "0,0,200"
func ParseHSV(s string) (HSV, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return HSV{}, fmt.Errorf("hsv %q: want h,s,v: %w", s, ErrInvalidInput)
	}

	var v [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return HSV{}, fmt.Errorf("hsv %q: %v: %w", s, err, ErrInvalidInput)
		}
		v[i] = uint8(n)
	}
	if v[0] > HueMax {
		return HSV{}, fmt.Errorf("hsv %q: hue exceeds %d: %w", s, HueMax, ErrInvalidInput)
	}
	return HSV{H: v[0], S: v[1], V: v[2]}, nil
}

// ParseColorRange 解析上下界并校验
func ParseColorRange(lower, upper string) (ColorRange, error) {
	lo, err := ParseHSV(lower)
	if err != nil {
		return ColorRange{}, err
	}
	hi, err := ParseHSV(upper)
	if err != nil {
		return ColorRange{}, err
	}
	r := ColorRange{Lower: lo, Upper: hi}
	if err := r.Validate(); err != nil {
		return ColorRange{}, err
	}
	return r, nil
}
