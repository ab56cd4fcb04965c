// Package protocol implements the binary wire protocol between a browser
// client and the elementsize server.
//
// The server asks the client to observe or stop observing DOM nodes by ID;
// the client answers with resize batches carrying each node's bounding box.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameObserve (0x01): Server → Client, node IDs to observe
//   - FrameUnobserve (0x02): Server → Client, node IDs to stop observing
//   - FrameResize (0x03): Client → Server, one notification batch
//   - FrameControl (0x04): ping, pong and close
//   - FrameError (0x05): error report
//
// # Encoding
//
//   - Varint: counts and codes (protobuf-style)
//   - Length-prefixed: node IDs and messages
//   - Big-endian IEEE 754: box coordinates (float64)
//
// Resize batch encoding:
//
//	[count: varint]
//	  [node: len-prefixed][present: 0x00|0x01]
//	  present: [x: f64][y: f64][width: f64][height: f64]
package protocol
