// Package window provides the dense word window used by multi-way bitmap
// aggregation.
//
// Operands are folded into a window of uncompressed words one after the
// other; the window is then emitted in order and reused for the next range of
// words. Writes mark fixed-size blocks active so that Clear and Spans only
// touch blocks that were written, which keeps sparse windows cheap.
//
// Windows are pooled and reusable (zero allocation in steady state).
package window
