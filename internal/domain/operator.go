package domain

// OperatorKind is the fixed annotation carried by a board cell.
type OperatorKind int

const (
	OpNone OperatorKind = iota
	OpIf
	OpThen
	OpAnd
	OpOr
	OpPlus
	OpMinus
	OpMult
	OpOver
	OpStart
)

var operatorNames = [...]string{
	OpNone:  "",
	OpIf:    "IF",
	OpThen:  "THEN",
	OpAnd:   "AND",
	OpOr:    "OR",
	OpPlus:  "PLUS",
	OpMinus: "MINUS",
	OpMult:  "MULT",
	OpOver:  "OVER",
	OpStart: "START",
}

func (k OperatorKind) String() string {
	if k < 0 || int(k) >= len(operatorNames) {
		return "UNKNOWN"
	}
	return operatorNames[k]
}

// ParseOperatorKind maps a tag such as "PLUS" back to its kind.
func ParseOperatorKind(s string) (OperatorKind, bool) {
	for i, name := range operatorNames {
		if name != "" && name == s {
			return OperatorKind(i), true
		}
	}
	return OpNone, false
}

// IsTrigger reports whether entries of this kind arm a chain rather than act on it.
func (k OperatorKind) IsTrigger() bool {
	switch k {
	case OpIf, OpOr:
		return true
	case OpNone, OpThen, OpAnd, OpPlus, OpMinus, OpMult, OpOver, OpStart:
		return false
	}
	return false
}
