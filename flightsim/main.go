// Command flightsim replays a day of scheduled flights on a terminal map.
package main

import "github.com/sarchlab/flightsim/flightsim/cmd"

func main() {
	cmd.Execute()
}
