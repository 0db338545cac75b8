// Package session implements the line-feed framed session layer that carries
// Cboe FX ITCH market data.
//
// Every packet is a one byte message type, an ASCII body and a 0x0A trailer.
// A Client logs in, subscribes and heartbeats with 'R'; a Server answers,
// streams SequencedData and heartbeats with 'H'. Neither starts goroutines:
// the owner calls Receive to read and dispatch, and KeepAlive on a timer to
// send heartbeats and detect a silent peer.
package session
