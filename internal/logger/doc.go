// Package logger wraps zap for the packlab binaries:
//   - a global sugared logger writing console output,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing for the --log-level flag and level configuration,
//   - leveled convenience functions (Infof, ErrorKV, etc.).
//
// Each command names its context logger after the binary, so every message
// carries the tool that produced it.
package logger
