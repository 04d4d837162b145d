package semantic

import (
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// constant folds expr to a compile-time value. seen guards against
// declarations whose initializers refer back to themselves.
func (b *Bindings) constant(expr cst.Node, seen map[cst.Node]bool) (any, bool) {
	switch expr.Kind() {
	case cst.KindLiteral, cst.KindStringTemplate:
		return cst.ParseLiteral(expr.Text())

	case cst.KindParenthesized:
		if inner := expr.Child(cst.SlotValue); inner != nil {
			return b.constant(inner, seen)
		}

	case cst.KindPrefix:
		operand := expr.Child(cst.SlotOperand)
		if operand == nil {
			return nil, false
		}
		v, ok := b.constant(operand, seen)
		if !ok {
			return nil, false
		}
		return foldPrefix(operatorText(expr), v)

	case cst.KindBinary:
		left, right := expr.Child(cst.SlotLeft), expr.Child(cst.SlotRight)
		if left == nil || right == nil {
			return nil, false
		}
		l, ok := b.constant(left, seen)
		if !ok {
			return nil, false
		}
		op := operatorText(expr)
		// Short-circuit operators need only the left operand when it decides.
		if lb, isBool := l.(bool); isBool && ((op == "&&" && !lb) || (op == "||" && lb)) {
			return lb, true
		}
		r, ok := b.constant(right, seen)
		if !ok {
			return nil, false
		}
		return foldBinary(op, l, r)

	case cst.KindNameReference, cst.KindIdentifier, cst.KindDotQualified, cst.KindSafeQualified:
		idx := b.indexOf(expr)
		if idx == nil {
			return nil, false
		}
		d, err := b.declaration(expr, idx, map[cst.Node]bool{})
		if err != nil || d.Kind() != cst.KindProperty || seen[d] {
			return nil, false
		}
		if !hasKeyword(d, "const") && !hasKeyword(d, "val") {
			return nil, false
		}
		init := d.Child(cst.SlotInitializer)
		if init == nil {
			return nil, false
		}
		seen[d] = true
		defer delete(seen, d)
		return b.constant(init, seen)
	}
	return nil, false
}

func operatorText(expr cst.Node) string {
	if op := expr.Child(cst.SlotOperator); op != nil {
		return strings.TrimSpace(op.Text())
	}
	return ""
}

func foldPrefix(op string, v any) (any, bool) {
	switch op {
	case "-":
		switch x := v.(type) {
		case int64:
			return -x, true
		case float64:
			return -x, true
		}
	case "+":
		switch v.(type) {
		case int64, float64:
			return v, true
		}
	case "!":
		if x, ok := v.(bool); ok {
			return !x, true
		}
	}
	return nil, false
}

func foldBinary(op string, l, r any) (any, bool) {
	switch op {
	case "&&", "||":
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		if !lok || !rok {
			return nil, false
		}
		if op == "&&" {
			return lb && rb, true
		}
		return lb || rb, true
	case "==", "!=":
		eq, ok := equal(l, r)
		if !ok {
			return nil, false
		}
		return eq == (op == "=="), true
	case "<", "<=", ">", ">=":
		c, ok := compare(l, r)
		if !ok {
			return nil, false
		}
		switch op {
		case "<":
			return c < 0, true
		case "<=":
			return c <= 0, true
		case ">":
			return c > 0, true
		default:
			return c >= 0, true
		}
	case "+":
		if ls, ok := l.(string); ok {
			if rs, ok := r.(string); ok {
				return ls + rs, true
			}
			return nil, false
		}
		return arithmetic(op, l, r)
	case "-", "*", "/", "%":
		return arithmetic(op, l, r)
	}
	return nil, false
}

func arithmetic(op string, l, r any) (any, bool) {
	li, lInt := l.(int64)
	ri, rInt := r.(int64)
	if lInt && rInt {
		switch op {
		case "+":
			return li + ri, true
		case "-":
			return li - ri, true
		case "*":
			return li * ri, true
		case "/":
			if ri == 0 {
				return nil, false
			}
			return li / ri, true
		case "%":
			if ri == 0 {
				return nil, false
			}
			return li % ri, true
		}
		return nil, false
	}

	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, false
	}
	switch op {
	case "+":
		return lf + rf, true
	case "-":
		return lf - rf, true
	case "*":
		return lf * rf, true
	case "/":
		return lf / rf, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func equal(l, r any) (bool, bool) {
	if l == nil || r == nil {
		return l == nil && r == nil, true
	}
	if lf, ok := toFloat(l); ok {
		rf, ok := toFloat(r)
		return ok && lf == rf, true
	}
	switch x := l.(type) {
	case bool:
		y, ok := r.(bool)
		return ok && x == y, true
	case string:
		y, ok := r.(string)
		return ok && x == y, true
	case rune:
		y, ok := r.(rune)
		return ok && x == y, true
	}
	return false, false
}

func compare(l, r any) (int, bool) {
	if lf, ok := toFloat(l); ok {
		rf, ok := toFloat(r)
		if !ok {
			return 0, false
		}
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		}
		return 0, true
	}
	switch x := l.(type) {
	case string:
		if y, ok := r.(string); ok {
			return strings.Compare(x, y), true
		}
	case rune:
		if y, ok := r.(rune); ok {
			return int(x - y), true
		}
	}
	return 0, false
}
