package ansicode

// maxParams bounds how many numeric parameters a single CSI/DCS sequence
// may carry; additional parameters are dropped rather than growing the
// slice without bound.
const maxParams = 32

// maxParamValue clamps an individual parameter value (xterm does the same
// to keep a crafted "CSI 99999999999 C" from overflowing arithmetic done
// against cursor/row/col math downstream).
const maxParamValue = 9999

// paramStack accumulates the numeric (and colon-separated sub-) parameters
// of a CSI or DCS sequence while it is being parsed.
type paramStack struct {
	params    [][]uint16
	current   []uint16
	overflowed bool
}

func (p *paramStack) reset() {
	p.params = p.params[:0]
	p.current = p.current[:0]
	p.overflowed = false
}

// digit folds one ASCII digit into the parameter currently being
// accumulated (the last sub-parameter of the last parameter).
func (p *paramStack) digit(b byte) {
	if len(p.current) == 0 {
		p.current = append(p.current, 0)
	}
	v := p.current[len(p.current)-1]
	v = v*10 + uint16(b-'0')
	if v > maxParamValue {
		v = maxParamValue
	}
	p.current[len(p.current)-1] = v
}

// subSeparator starts a new colon-separated sub-parameter within the
// current parameter (e.g. the "5" in "4:5" for underline style).
func (p *paramStack) subSeparator() {
	if len(p.params) >= maxParams {
		p.overflowed = true
		return
	}
	p.current = append(p.current, 0)
}

// separator closes the current parameter and starts a new one.
func (p *paramStack) separator() {
	if len(p.params) >= maxParams {
		p.overflowed = true
		return
	}
	if p.current == nil {
		p.current = []uint16{0}
	}
	p.params = append(p.params, p.current)
	p.current = nil
}

// finish closes out any parameter being accumulated and returns the full
// set. Calling finish on an empty stack (no digits, no separators at all)
// returns an empty slice, which callers must treat as "parameter omitted",
// not as a literal zero.
func (p *paramStack) finish() [][]uint16 {
	if p.current != nil || len(p.params) > 0 {
		if len(p.params) >= maxParams {
			p.overflowed = true
			p.current = nil
			return p.params
		}
		if p.current == nil {
			p.current = []uint16{0}
		}
		p.params = append(p.params, p.current)
		p.current = nil
	}
	return p.params
}

// intOr returns the first sub-parameter of params[i] as an int, or def if
// that parameter is absent or zero (most CSI final bytes treat 0 and
// "omitted" identically).
func intOr(params [][]uint16, i int, def int) int {
	if i >= len(params) || len(params[i]) == 0 || params[i][0] == 0 {
		return def
	}
	return int(params[i][0])
}
