// Command as_node_degree writes the channel degree of every AS hosting
// Lightning nodes.
package main

func main() {
	Execute()
}
