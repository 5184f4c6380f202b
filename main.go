// Command fulcrum ranks files by co-change betweenness centrality.
package main

import "github.com/papapumpkin/fulcrum/cmd"

func main() {
	cmd.Execute()
}
