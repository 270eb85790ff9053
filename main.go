// SPDX-License-Identifier: MPL-2.0

package main

import cmd "toolbridge/cmd/toolbridge"

func main() {
	cmd.Execute()
}
