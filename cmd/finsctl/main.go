// Command finsctl reads and writes the memory of a controller over FINS/UDP.
//
// Connection settings are taken from flags, FINS_* environment variables and .env files:
//
//	finsctl --host 192.168.250.1 --node 1 identity
//	finsctl read C100 2
//	FINS_HOST=10.0.0.5 finsctl write D200 0x10 0x20
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
