// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package relay implements the presence relay server.

Each transport connection moves through three states:

	Anonymous --register--> Registered --close--> Closed
	                 ^            |
	                 +--register--+

An anonymous connection may register or ping; its location updates are
ignored because there is no identity to attribute them to. A registered
connection may re-register at any time. Nothing is processed once closed.

For every accepted update_location the relay stamps the record with its own
clock, hands it to the persistence dispatcher (non-blocking), then fans a
position_update out to every other registered connection. A slow or failing
store never delays live delivery, and a failed store write never undoes a
broadcast.

Malformed or unrecognized frames are logged and dropped; the connection
stays open.
*/
package relay
