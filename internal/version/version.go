// Package version exposes the gateway's identification string, used in
// diagnostic responses so clients can tell gateway failures apart from
// upstream application errors.
package version

// Version is the semantic version of the gateway binary.
const Version = "0.2.0"

// String is the full identification string, e.g. "sharp v0.2.0".
const String = "sharp v" + Version
