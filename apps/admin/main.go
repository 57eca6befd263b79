package main

import (
	"log"
	"os"

	"github.com/trezcool/bajeti/core"
	"github.com/trezcool/bajeti/core/user"
	"github.com/trezcool/bajeti/storage/database"
	sqlxrepos "github.com/trezcool/bajeti/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Connect(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		db:     db,
		conf:   conf,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
