package main

import "github.com/dmitrijs2005/stockkeeper/cmd/admin/cmd"

func main() {
	cmd.Execute()
}
