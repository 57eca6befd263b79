package main

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	echoapi "github.com/trezcool/bajeti/api/echo"
	"github.com/trezcool/bajeti/core"
	"github.com/trezcool/bajeti/core/budget"
	"github.com/trezcool/bajeti/core/planning"
	"github.com/trezcool/bajeti/core/user"
	emailsvc "github.com/trezcool/bajeti/services/email"
	logsvc "github.com/trezcool/bajeti/services/logger"
	"github.com/trezcool/bajeti/storage/database"
	sqlxrepos "github.com/trezcool/bajeti/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Connect(conf)
	if err != nil {
		logger.Error(fmt.Sprintf("connecting to database: %v", err), err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err = database.Migrate(db.DB, conf); err != nil {
		logger.Error(fmt.Sprintf("migrating database: %v", err), err)
		os.Exit(1)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	budgetSvc := budget.NewService(
		sqlxrepos.NewBudgetRepository(db),
		mailSvc,
		mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail},
	)
	planSvc := planning.NewService(planningConfig(conf), sqlxrepos.NewPlanningRepository(db))

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:     conf.Server.Addr(),
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		BudgetSvc:   budgetSvc,
		PlanningSvc: planSvc,
		Shutdown:    shutdown,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

// planningConfig applies the deployment overrides on top of the pipeline
// defaults; zero values keep the defaults.
func planningConfig(conf *core.Config) planning.Config {
	cfg := planning.DefaultConfig()
	if conf.Planning.StandardLoadSecondary > 0 {
		cfg.StandardLoads[planning.CycleSecondary] = decimal.NewFromFloat(conf.Planning.StandardLoadSecondary)
	}
	if conf.Planning.StandardLoadPrimary > 0 {
		cfg.StandardLoads[planning.CyclePrimary] = decimal.NewFromFloat(conf.Planning.StandardLoadPrimary)
	}
	if conf.Planning.SchoolCapacity > 0 {
		cfg.SchoolCapacity = conf.Planning.SchoolCapacity
	}
	if conf.Planning.ClassSizeMin > 0 && conf.Planning.ClassSizeTarget > 0 && conf.Planning.ClassSizeMax > 0 {
		cfg.ClassSize = planning.ClassSizeBounds{
			Min:    conf.Planning.ClassSizeMin,
			Target: conf.Planning.ClassSizeTarget,
			Max:    conf.Planning.ClassSizeMax,
		}
	}
	return cfg
}
