// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Conterm - Serial Console Key Decoder
//
// A CLI tool for decoding console keystrokes into logical keys and
// driving ANSI cursor output on serial, WebSocket and local terminals.

package main

import (
	"os"

	"github.com/Thermoquad/conterm/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
