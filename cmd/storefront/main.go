package main

import "github.com/freshmart/storefront/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}
