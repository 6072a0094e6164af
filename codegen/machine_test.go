package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// machine interprets the subset of AArch64 that the generator emits, so
// tests can check what the code computes rather than how it is spelled.
type machine struct {
	prog   []instr
	labels map[string]int
	regs   map[string]int64
	mem    map[int64]int64

	cmpA, cmpB int64
}

type instr struct {
	op   string
	args []string
	line string
}

const (
	stackTop    = 1 << 20
	returnToken = -1
	maxSteps    = 100000
)

func splitArgs(s string) (ret []string) {
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				ret = append(ret, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		ret = append(ret, rest)
	}
	return
}

func load(asm string) (*machine, error) {
	m := &machine{
		labels: map[string]int{},
		regs:   map[string]int64{},
		mem:    map[int64]int64{},
	}

	for _, line := range strings.Split(asm, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasSuffix(line, ":"):
			name := strings.TrimSuffix(line, ":")
			if _, ok := m.labels[name]; ok {
				return nil, fmt.Errorf("duplicate label %s", name)
			}
			m.labels[name] = len(m.prog)
			continue
		case strings.HasPrefix(line, "."):
			continue
		}

		fields := strings.SplitN(line, "\t", 2)
		in := instr{op: fields[0], line: line}
		if len(fields) == 2 {
			in.args = splitArgs(fields[1])
		}
		m.prog = append(m.prog, in)
	}

	return m, nil
}

func (m *machine) reg(name string) int64 {
	return m.regs[name]
}

func imm(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
}

func (m *machine) operand(s string) (int64, error) {
	if strings.HasPrefix(s, "#") {
		return imm(s)
	}
	return m.reg(s), nil
}

// shifted reads "#imm" optionally followed by "lsl #n" in the next argument.
func shifted(args []string) (int64, uint, error) {
	v, err := imm(args[0])
	if err != nil {
		return 0, 0, err
	}
	if len(args) < 2 {
		return v, 0, nil
	}
	s, err := imm(strings.TrimSpace(strings.TrimPrefix(args[1], "lsl")))
	return v, uint(s), err
}

// address resolves a memory operand and applies pre/post-index writeback.
func (m *machine) address(mem string, post []string) (int64, func(), error) {
	writeback := strings.HasSuffix(mem, "!")
	inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSuffix(mem, "!"), "["), "]")
	parts := splitArgs(inner)

	base := parts[0]
	var offset int64
	if len(parts) == 2 {
		var err error
		if offset, err = imm(parts[1]); err != nil {
			return 0, nil, err
		}
	}

	addr := m.reg(base) + offset
	after := func() {}
	switch {
	case writeback:
		m.regs[base] = addr
	case len(post) == 1:
		delta, err := imm(post[0])
		if err != nil {
			return 0, nil, err
		}
		after = func() { m.regs[base] = addr + delta }
	}

	return addr, after, nil
}

func (m *machine) condition(c string) bool {
	a, b := m.cmpA, m.cmpB
	switch c {
	case "eq":
		return a == b
	case "ne":
		return a != b
	case "lt":
		return a < b
	case "gt":
		return a > b
	case "le":
		return a <= b
	case "ge":
		return a >= b
	}
	panic("unknown condition " + c)
}

// run calls symbol with args in x0-x7 and returns x0 at the outermost ret.
func (m *machine) run(symbol string, args ...int64) (int64, error) {
	pc, ok := m.labels[symbol]
	if !ok {
		return 0, fmt.Errorf("no symbol %s", symbol)
	}

	m.regs["sp"] = stackTop
	m.regs["x29"] = 0
	m.regs["x30"] = returnToken
	for i, a := range args {
		m.regs["x"+strconv.Itoa(i)] = a
	}

	for steps := 0; steps < maxSteps; steps++ {
		if pc >= len(m.prog) {
			return 0, fmt.Errorf("fell off the end of the program")
		}
		in := m.prog[pc]
		pc++
		a := in.args

		binop := func(f func(x, y int64) int64) error {
			y, err := m.operand(a[2])
			if err != nil {
				return err
			}
			m.regs[a[0]] = f(m.reg(a[1]), y)
			return nil
		}

		var err error
		switch in.op {
		case "mov":
			var v int64
			v, err = m.operand(a[1])
			m.regs[a[0]] = v
		case "movz":
			var v int64
			var s uint
			v, s, err = shifted(a[1:])
			m.regs[a[0]] = v << s
		case "movk":
			var v int64
			var s uint
			v, s, err = shifted(a[1:])
			m.regs[a[0]] = m.reg(a[0])&^(0xffff<<s) | v<<s
		case "stp", "ldp":
			var addr int64
			var after func()
			addr, after, err = m.address(a[2], a[3:])
			if err == nil {
				if in.op == "stp" {
					m.mem[addr], m.mem[addr+8] = m.reg(a[0]), m.reg(a[1])
				} else {
					m.regs[a[0]], m.regs[a[1]] = m.mem[addr], m.mem[addr+8]
				}
				after()
			}
		case "str", "ldr":
			var addr int64
			var after func()
			addr, after, err = m.address(a[1], a[2:])
			if err == nil {
				if in.op == "str" {
					m.mem[addr] = m.reg(a[0])
				} else {
					m.regs[a[0]] = m.mem[addr]
				}
				after()
			}
		case "add":
			err = binop(func(x, y int64) int64 { return x + y })
		case "sub":
			err = binop(func(x, y int64) int64 { return x - y })
		case "mul":
			err = binop(func(x, y int64) int64 { return x * y })
		case "sdiv":
			err = binop(func(x, y int64) int64 {
				if y == 0 {
					return 0
				}
				return x / y
			})
		case "and":
			err = binop(func(x, y int64) int64 { return x & y })
		case "orr":
			err = binop(func(x, y int64) int64 { return x | y })
		case "eor":
			err = binop(func(x, y int64) int64 { return x ^ y })
		case "lsl":
			err = binop(func(x, y int64) int64 { return x << uint(y&63) })
		case "asr":
			err = binop(func(x, y int64) int64 { return x >> uint(y&63) })
		case "msub":
			m.regs[a[0]] = m.reg(a[3]) - m.reg(a[1])*m.reg(a[2])
		case "neg":
			m.regs[a[0]] = -m.reg(a[1])
		case "mvn":
			m.regs[a[0]] = ^m.reg(a[1])
		case "cmp":
			m.cmpA = m.reg(a[0])
			m.cmpB, err = m.operand(a[1])
		case "cset":
			m.regs[a[0]] = 0
			if m.condition(a[1]) {
				m.regs[a[0]] = 1
			}
		case "b":
			pc = m.labels[a[0]]
		case "b.eq", "b.ne":
			if m.condition(strings.TrimPrefix(in.op, "b.")) {
				pc = m.labels[a[0]]
			}
		case "ret":
			if m.reg("x30") == returnToken {
				return m.reg("x0"), nil
			}
			pc = int(m.reg("x30"))
		default:
			err = fmt.Errorf("unknown instruction")
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", in.line, err)
		}
	}

	return 0, fmt.Errorf("step limit exceeded")
}
