// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package hangar implements the client side of the hangar service
// protocol: the command gateway (create, rename, delete, send-prompt)
// and the registry gateway (snapshot polling).
//
// The hangar listens on a Unix socket and speaks CBOR. Each connection
// carries exactly one request-response cycle: the client writes one
// CBOR request with an "action" field, the server writes one response
// envelope {ok, error, data}, and the connection closes. CBOR is
// self-delimiting, so no framing protocol is needed.
//
// All drone lifecycle operations are asynchronous on the hangar side.
// A successful create-drone means the hangar accepted the request and
// assigned an ID; the drone itself materializes in registry snapshots
// later, first in phase "starting". The deck's reconciliation layer
// (lib/reconcile) exists to bridge that gap.
//
// Failure responses carry a machine-readable code as a "code: message"
// prefix in the envelope's error string. [Client] surfaces these as
// *[HangarError]; check codes with [IsHangarError]:
//
//	_, err := client.CreateDrone(ctx, spec)
//	if hangar.IsHangarError(err, hangar.ErrCodeDuplicateName) { ... }
//
// [SocketServer] is the serving half of the same protocol, used by
// cmd/drone-hangar-mock and by package tests. [Poller] drives the
// registry polling loop on an injectable clock.
package hangar
