// Package main provides the Scholaris Core library entry point.
// The sync engine itself lives under internal/ and is embedded by the
// platform shells; this binary only reports the build.
package main

import "fmt"

// Version is set at build time
var Version = "0.1.0"

func main() {
	fmt.Printf("Scholaris Core v%s\n", Version)
	fmt.Println("Offline-first sync engine for the Scholaris school client")
}
