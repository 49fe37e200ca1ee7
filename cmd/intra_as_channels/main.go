// Command intra_as_channels writes how many channels stay inside each AS.
package main

func main() {
	Execute()
}
