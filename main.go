package main

import "employee_tracker/cmd"

func main() {
	cmd.Execute()
}
