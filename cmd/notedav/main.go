// Command notedav serves a hierarchical note/folder store over WebDAV.
package main

import (
	"log"

	"notedav/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
