package numeval

import (
	"fmt"
	"math/big"
	"strings"
)

// MaxExponent limits the magnitude of exponents accepted by Native.
const MaxExponent = 1 << 16

// MaxPowerBits limits the estimated size in bits of the numerator or
// denominator of a power computed by Native.
const MaxPowerBits = 1 << 22

// Native evaluates expressions with exact rational arithmetic. Results that
// are not integers are printed with up to 20 fractional digits.
type Native struct{}

var _ Evaluator = Native{}

// Eval implements Evaluator.
func (Native) Eval(expr string) (string, error) {
	if !validChars(expr) {
		return "", &Error{expr, "invalid character"}
	}
	p := &parser{src: expr}
	r, err := p.expr()
	if err != nil {
		return "", err
	}
	if p.peek() != 0 {
		return "", p.errorf("unexpected %q", p.src[p.pos])
	}
	return format(r), nil
}

func format(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := strings.TrimRight(r.FloatString(20), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{p.src, fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// Returns the next non-space byte without consuming it, or 0 at the end.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expr() (*big.Rat, error) {
	lhs, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == '+' {
			lhs.Add(lhs, rhs)
		} else {
			lhs.Sub(lhs, rhs)
		}
	}
}

func (p *parser) term() (*big.Rat, error) {
	lhs, err := p.power()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.power()
		if err != nil {
			return nil, err
		}
		switch op {
		case '*':
			lhs.Mul(lhs, rhs)
		case '/':
			if rhs.Sign() == 0 {
				return nil, p.errorf("divide by zero")
			}
			lhs.Quo(lhs, rhs)
		case '%':
			if rhs.Sign() == 0 {
				return nil, p.errorf("divide by zero")
			}
			lhs = remainder(lhs, rhs)
		}
	}
}

// a - b*trunc(a/b)
func remainder(a, b *big.Rat) *big.Rat {
	q := new(big.Rat).Quo(a, b)
	trunc := new(big.Int).Quo(q.Num(), q.Denom())
	prod := new(big.Rat).Mul(b, new(big.Rat).SetInt(trunc))
	return prod.Sub(a, prod)
}

func (p *parser) power() (*big.Rat, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	if !exp.IsInt() {
		return nil, p.errorf("non-integer exponent")
	}
	n := exp.Num()
	if n.CmpAbs(big.NewInt(MaxExponent)) > 0 {
		return nil, p.errorf("exponent too large")
	}
	if base.Sign() == 0 && n.Sign() < 0 {
		return nil, p.errorf("divide by zero")
	}
	if powerBits(base, n.Int64()) > MaxPowerBits {
		return nil, p.errorf("result of power too large")
	}
	return pow(base, n.Int64()), nil
}

// Estimates the bit length of the larger part of base^n. Bases of magnitude
// 0 or 1 never grow.
func powerBits(base *big.Rat, n int64) int64 {
	if n < 0 {
		n = -n
	}
	bits := base.Num().BitLen()
	if d := base.Denom().BitLen(); d > bits {
		bits = d
	}
	if bits <= 1 {
		return 0
	}
	return int64(bits) * n
}

func pow(base *big.Rat, n int64) *big.Rat {
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(base.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(base.Denom(), big.NewInt(n), nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}

func (p *parser) unary() (*big.Rat, error) {
	switch p.peek() {
	case '-':
		p.pos++
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		return r.Neg(r), nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (*big.Rat, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		r, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("missing )")
		}
		p.pos++
		return r, nil
	case c == '.' || ('0' <= c && c <= '9'):
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '.' || ('0' <= p.src[p.pos] && p.src[p.pos] <= '9')) {
			p.pos++
		}
		r, ok := new(big.Rat).SetString(p.src[start:p.pos])
		if !ok {
			return nil, p.errorf("bad number %q", p.src[start:p.pos])
		}
		return r, nil
	case c == 0:
		return nil, p.errorf("unexpected end of expression")
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}
