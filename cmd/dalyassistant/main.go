// Command dalyassistant runs the Daly College assistant: the chat gateway
// server, a terminal chat client, and offline knowledge tools.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
