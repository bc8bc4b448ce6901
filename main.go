/*
Copyright © 2025 openkms
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/openkms/docchat-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	err := godotenv.Load()
	if err != nil {
		panic("Error loading .env file")
	}

}
