package cst

// Slot names a child position of a source node.
type Slot string

const (
	SlotName          Slot = "name"
	SlotPackage       Slot = "package"
	SlotImports       Slot = "imports"
	SlotDeclarations  Slot = "declarations"
	SlotModifiers     Slot = "modifiers"
	SlotSupertypes    Slot = "supertypes"
	SlotParameters    Slot = "parameters"
	SlotType          Slot = "type"
	SlotInitializer   Slot = "initializer"
	SlotBody          Slot = "body"
	SlotStatements    Slot = "statements"
	SlotReceiver      Slot = "receiver"
	SlotSelector      Slot = "selector"
	SlotCallee        Slot = "callee"
	SlotArguments     Slot = "arguments"
	SlotLeft          Slot = "left"
	SlotRight         Slot = "right"
	SlotOperand       Slot = "operand"
	SlotOperator      Slot = "operator"
	SlotCondition     Slot = "condition"
	SlotThen          Slot = "then"
	SlotElse          Slot = "else"
	SlotLoopParameter Slot = "loop_parameter"
	SlotIterable      Slot = "iterable"
	SlotValue         Slot = "value"
	SlotTry           Slot = "try"
	SlotCatches       Slot = "catches"
	SlotFinally       Slot = "finally"
	SlotIndices       Slot = "indices"
	SlotLabel         Slot = "label"
)

var allSlots = []Slot{
	SlotName, SlotPackage, SlotImports, SlotDeclarations, SlotModifiers,
	SlotSupertypes, SlotParameters, SlotType, SlotInitializer, SlotBody,
	SlotStatements, SlotReceiver, SlotSelector, SlotCallee, SlotArguments,
	SlotLeft, SlotRight, SlotOperand, SlotOperator, SlotCondition, SlotThen,
	SlotElse, SlotLoopParameter, SlotIterable, SlotValue, SlotTry, SlotCatches,
	SlotFinally, SlotIndices, SlotLabel,
}

// AllSlots returns every slot name in a stable order.
func AllSlots() []Slot {
	return append([]Slot(nil), allSlots...)
}

// ChildNodes returns every child of n across all slots, in slot order.
func ChildNodes(n Node) []Node {
	if e, ok := n.(*Element); ok {
		var out []Node
		for _, s := range e.order {
			for _, c := range e.slots[s] {
				out = append(out, c)
			}
		}
		return out
	}
	var out []Node
	for _, s := range allSlots {
		out = append(out, n.Children(s)...)
	}
	return out
}

// SlotOf returns the slot of parent that holds child, or "" if none does.
func SlotOf(parent, child Node) Slot {
	if parent == nil || child == nil {
		return ""
	}
	for _, s := range allSlots {
		for _, c := range parent.Children(s) {
			if c == child {
				return s
			}
		}
	}
	return ""
}
