package main

import "github.com/eygar/payment-service/cmd"

func main() {
	cmd.Execute()
}
