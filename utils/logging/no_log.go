// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

var _ Logger = NoLog{}

// NoLog discards all messages
type NoLog struct{}

func (NoLog) Fatal(string, ...interface{}) {}
func (NoLog) Error(string, ...interface{}) {}
func (NoLog) Warn(string, ...interface{})  {}
func (NoLog) Info(string, ...interface{})  {}
func (NoLog) Debug(string, ...interface{}) {}
func (NoLog) Verbo(string, ...interface{}) {}
func (NoLog) Stop()                        {}
