// Package structure provides inspections over control flow and block
// structure.
//
// Rules in this package:
//   - ST01: Condition that is a compile-time constant
//   - ST02: Empty catch block
package structure
