// Package npy reads and writes the NumPy array files that hold cached audio
// segments.
//
// Only one-dimensional arrays are supported. Decoding accepts format versions
// 1.0 through 3.0, little- and big-endian float32, float64, int16, and int32
// dtypes, and always yields the stored values as float32 samples.
// Encoding writes version 1.0 little-endian float32. A Codec built for an
// extension ending in ".zst" transparently wraps the payload in zstd.
package npy
