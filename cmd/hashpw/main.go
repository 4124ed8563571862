package main // Small operator tool: prints the bcrypt hash for STAFF_PASSWORD_HASH

import (
	"fmt"
	"log"
	"os"

	"github.com/ermekov/club-table-reservation/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <password>", os.Args[0])
	}
	hash, err := utils.HashPassword(os.Args[1], 12)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
