// Package analysis turns a raw microphone sample stream into per-frame audio
// features for reactive visuals.
//
// An [Analyzer] consumes float32 sample blocks on the audio subsystem's
// callback cadence. Every hop it windows the most recent FFT-size samples,
// computes RMS, three normalized energy bands, the spectral centroid and a
// beat flag, and publishes the result as an immutable [Frame]. Readers on the
// render loop call [Analyzer.Frame] and never wait for analysis to finish.
//
// When no device is available the analyzer keeps serving the [Silent]
// baseline, so visuals continue without audio reactivity.
package analysis
