/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

// Global is the logging system used by MustGetLogger and the package level
// helpers.
var Global *Logging

func init() {
	logging, err := New(Config{})
	if err != nil {
		panic(err)
	}

	Global = logging
	InitGRPCLogger()
}

// Reset sets logging to the defaults defined in this package.
//
// Used in tests.
func Reset() {
	Global.Apply(Config{})
}

// MustGetLogger creates a logger with the specified name. If an invalid name
// is provided, the operation will panic.
func MustGetLogger(loggerName string) *FabricLogger {
	return Global.Logger(loggerName)
}

// SetObserver calls SetObserver on the global logging system.
func SetObserver(observer Observer) {
	Global.SetObserver(observer)
}
