// Package sealer provides authenticated encryption for records at
// rest, selecting AES-GCM where hardware acceleration is expected and
// ChaCha20-Poly1305 elsewhere.
package sealer
