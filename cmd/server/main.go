package main

import (
	"github.com/xrpyield/bridge-backend/internal/server"
)

func main() {
	server.Init()
}
