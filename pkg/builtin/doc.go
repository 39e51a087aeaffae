// ABOUTME: Package doc for the optional builtin capability set
// ABOUTME: Ready-made resources, mods and mixers on top of the core contracts
// Package builtin provides ready-made Resource and Mod implementations
// usable standalone or as references for writing new capabilities.
//
// The package depends only on the core capability interfaces; nothing in
// the core depends on it, so leaving it out of a build never affects the
// framework contracts.
//
// Register installs the whole set into a pipeline registry:
//
//	reg := pipeline.NewRegistry()
//	builtin.Register(reg)
//
// Implementation names: "tone", "fm", "sampler" (resources); "gain",
// "fade", "envelope", "resample", "quantize" (mods); "linear" (mixer).
package builtin
