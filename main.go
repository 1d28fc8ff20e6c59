// Command dupin is the administrative CLI over the embedded document
// engine (§6 "CLI surface").
package main

import (
	"github.com/areggiori/dupin-go/cmd"
)

func main() {
	cmd.Execute()
}
