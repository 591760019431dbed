// Command adduser provisions an identity record directly in the database.
// It exists for bootstrap and operations; regular fieldAgent/auditor accounts
// are expected to be created by an admin through tooling like this with
// -created-by set.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fieldops.org/internal/auth"
	"fieldops.org/internal/ids"
)

func main() {
	log.SetFlags(0)
	var (
		dsn       = flag.String("dsn", os.Getenv("FIELDOPS_PG_DSN"), "PostgreSQL DSN")
		email     = flag.String("email", "", "Login email")
		password  = flag.String("password", "", "Initial password")
		role      = flag.String("role", string(auth.RoleFieldAgent), "Role name")
		createdBy = flag.String("created-by", "", "Sponsoring admin ID (required for fieldAgent/auditor)")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or FIELDOPS_PG_DSN")
	}
	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}
	parsedRole, err := auth.ParseRole(*role)
	if err != nil {
		log.Fatalf("invalid role: %v", err)
	}
	if parsedRole.Sponsored() && *createdBy == "" {
		log.Fatalf("role %s requires -created-by", parsedRole)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	id := ids.New()
	var sponsor any
	if *createdBy != "" {
		sponsor = *createdBy
	}
	_, err = db.ExecContext(ctx, `
		insert into identities (id, email, password_hash, role, is_active, created_by)
		values ($1, $2, $3, $4, true, $5)`,
		id, *email, hash, string(parsedRole), sponsor,
	)
	if err != nil {
		log.Fatalf("insert identity: %v", err)
	}

	fmt.Printf("created %s identity %s (%s)\n", parsedRole, id, *email)
}
