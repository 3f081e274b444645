// Package connection provides the ground link client for telemhist-cli.
//
// It speaks the same length-prefixed binary frame protocol as the
// server's link listener, over plain TCP.
package connection
