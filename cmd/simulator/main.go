// Command simulator measures how many payments a set of adversarial ASes can
// censor in a Lightning channel graph.
package main

func main() {
	Execute()
}
