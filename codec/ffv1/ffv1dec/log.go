/*
DESCRIPTION
  log.go provides the package-level logger used by the decoder.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ffv1dec

import "github.com/ausocean/utils/logging"

// Log is the package-level logger. It defaults to a no-op implementation so
// that importing this package is silent by default; callers that want
// decode-path diagnostics assign their own logger to Log.
var Log logging.Logger = noopLogger{}

// noopLogger discards everything. It satisfies logging.Logger.
type noopLogger struct{}

func (noopLogger) SetLevel(int8)                     {}
func (noopLogger) Log(int8, string, ...interface{})  {}
func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warning(string, ...interface{})    {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) Fatal(string, ...interface{})      {}
