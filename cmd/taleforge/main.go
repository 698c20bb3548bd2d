// Command taleforge validates, inspects and plays story content from the
// terminal, and can run the HTTP server.
package main

import "taleforge/cmd/taleforge/root"

func main() {
	root.Execute()
}
