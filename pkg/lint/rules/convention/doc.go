// Package convention provides inspections for Kotlin coding conventions.
//
// Rules in this package:
//   - CV01: Identity equality against a literal
//   - CV02: Redundant public modifier
package convention
