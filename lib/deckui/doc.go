// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package deckui implements the deck's terminal user interface: a live
// drone roster with keyboard-driven fleet commands and a prompt
// composer bound to the active selection. Built on bubbletea (Elm
// architecture), it consumes the reconciliation engine through the
// [Engine] interface and re-renders from engine state on every engine
// event.
//
// The engine owns all reconciliation state: optimistic placeholders,
// the deletion overlay, prompt queues, and the selection. The model
// here holds only presentation state (cursor, scroll offset, input
// focus, transient notices), so anything the View shows is derived
// from the engine at render time and never cached across events.
//
// Data flow:
//
//	[hangar poller] -> [reconcile.Reconciler]
//	                         | (Engine interface + event channel)
//	                     [Model] <- bubbletea event loop
//	                         |
//	                  [terminal output]
package deckui
