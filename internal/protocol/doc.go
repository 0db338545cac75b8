// Package protocol owns the shared error taxonomy for the market-data codecs.
//
// Ownership boundary:
// - wire: cursor-based binary and fixed-width ASCII field primitives
// - nasdaq: ITCH 5.0 and QBBO 2.1 binary message codecs
// - cboefx: Cboe FX / Hotspot ITCH book messages and snapshot grouping
// - session: delimiter-framed session protocol (login, heartbeat, sequenced data)
// - frame: length-prefixed framing for binary message streams
package protocol
