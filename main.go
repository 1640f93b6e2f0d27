// piso turns an LVM thin pool into a rack of virtual USB drives with an
// on-device menu. The command tree lives in cmd.
package main

import "github.com/dogi/pISO/cmd"

func main() {
	cmd.Execute()
}
