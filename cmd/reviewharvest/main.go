// Command reviewharvest crawls a product's review listing into a
// relational table and derives sentiment and token columns from it.
package main

import "reviewharvest/internal/cli"

func main() {
	cli.Execute()
}
