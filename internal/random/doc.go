// Package random provides the bounded integer sampling used by key generation.
//
// A [Source] draws bytes from an io.Reader and turns them into uniformly
// distributed integers by rejection sampling. Sources are either backed by a
// caller-supplied reader (crypto/rand by default) or seeded: [NewSeeded]
// stretches a seed into a deterministic SHAKE256 stream after separating it
// per purpose with HKDF-SHA-512, so the same seed and label always yield the
// same sequence of integers.
//
// [Source.Split] derives an independent child stream, which lets concurrent
// searches run without sharing, and correlating, a single stream.
//
// A Source is not safe for concurrent use.
package random
