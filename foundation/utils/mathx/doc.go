// Package mathx provides exact decimal numbers for numeric literals.
//
// Package: mathx
// Title: Exact Decimal Values
// Description: Decimal wraps math/big.Rat so that numeric literals keep
//              their exact value from source text through the AST and into
//              every output format. Parsing accepts plain decimal notation
//              only; malformed text such as "1.2.3" or "." is rejected.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
//
// Usage:
//
//	d, err := mathx.NewDecimal("3.25")
//	if err != nil {
//		return err
//	}
//	fmt.Println(d)           // 3.25
//	fmt.Println(d.Float64()) // 3.25
package mathx
