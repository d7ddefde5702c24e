// Package light talks to the HTTP control API of an Elgato light.
//
// Every light serves one JSON document at /elgato/lights on port 9123:
//
//	{"numberOfLights": 1, "lights": [{"on": 1, "brightness": 40, "temperature": 250}]}
//
// GET reads it and PUT replaces it. Temperature is in mireds on the wire;
// Kelvin conversion lives here so nothing else deals with the native scale.
// Lights are IPv4-only, so the client never dials IPv6.
package light
