// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the deck.
//
// Configuration is loaded from a single file specified by either the
// DRONE_DECK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. Unlike a daemon config, the
// file itself is optional: the deck is a local tool and runs on
// [Default] when neither source names a file.
//
// Duration fields are written as Go duration strings ("2s", "1m30s")
// and unmarshal into [Duration].
//
// The file overrides only the fields it names; everything else keeps
// its default. Flags parsed by the binary may override the result on
// top (the deck's --hangar-socket does this).
//
// This package depends on no other deck packages.
package config
