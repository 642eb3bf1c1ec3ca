// Package conv provides checked integer conversions for values crossing the
// tree file format boundary, where the fixed-width header and record fields
// meet Go's platform sized int.
//
// Conversions that are safe by construction, such as loop indices, use plain
// casts instead.
package conv
