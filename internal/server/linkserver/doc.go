// Package linkserver provides the ground link TCP server.
//
// Requests and responses travel in length-prefixed binary frames. Each
// request selects a subservice by its first byte; each response frame
// echoes that byte followed by a status byte and the payload.
package linkserver
