// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package registry tracks which live connection currently speaks for each
identity.

An identity maps to at most one connection. Registering an identity that is
already bound replaces the previous binding (last writer wins); the superseded
connection stays open but stops receiving broadcasts. Removing a connection
only clears the entry if that connection is still the current owner, so a
late close from a superseded socket never evicts its replacement.

Broadcasts take a snapshot of the registered connections under the read lock
and deliver outside of it. A failed send is logged and counted, never fatal
to the rest of the fanout.
*/
package registry
