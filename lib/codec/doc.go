// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the deck's standard CBOR encoding configuration.
//
// Drone Deck draws a clear serialization boundary:
//
//   - Text formats for files humans edit: fleet definitions are JSONC,
//     the deck's own configuration is YAML.
//   - CBOR for the hangar socket protocol: every request and response
//     exchanged with the hangar service, including registry snapshots.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// The struct tag on a type documents which side of the boundary it
// lives on:
//
//   - `cbor` tag: the type is only ever serialized as CBOR. Every
//     hangar protocol type (requests, results, registry records) is in
//     this category; nothing on the socket doubles as CLI output.
//   - `json` tag: the type is only ever read from JSON. Fleet
//     definition files are in this category; they are converted to
//     protocol types before anything touches the socket.
//
// Never use both tags on the same field.
package codec
