// Package pipeline assembles engine graphs.
//
// A sinogram pass is either
//
//	dark reader  -> dark averager -> corrector:0
//	flat reader  -> flat averager -> corrector:1
//	proj reader  --------------------> corrector:2 -> generator -> writer
//
// when both dark and flat frames are configured, or
//
//	proj reader -> generator -> writer
//
// otherwise. Every reader is restricted to the pass's row window. A center
// estimation graph is a reader feeding an estimator.
package pipeline
