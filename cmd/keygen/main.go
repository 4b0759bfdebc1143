// Command keygen prints a new base64 master key for IDVAULT_MASTER_KEY.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bpmonitor/idvault/pkg/secrets"
)

func main() {
	asEnv := flag.Bool("env", false, "print as IDVAULT_MASTER_KEY=<key>")
	flag.Parse()

	key, err := secrets.GenerateEncodedKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	if *asEnv {
		fmt.Printf("IDVAULT_MASTER_KEY=%s\n", key)
		return
	}
	fmt.Println(key)
}
