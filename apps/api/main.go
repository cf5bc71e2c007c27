package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/messaging"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	sdb := sqlxrepos.Wrap(db)
	usrRepo := sqlxrepos.NewUserRepository(sdb)
	classRepo := sqlxrepos.NewClassRepository(sdb)
	postRepo := sqlxrepos.NewPostRepository(sdb)
	taskRepo := sqlxrepos.NewTaskRepository(sdb)
	subRepo := sqlxrepos.NewSubmissionRepository(sdb)
	msgRepo := sqlxrepos.NewMessageRepository(sdb)
	prjRepo := sqlxrepos.NewProjectRepository(sdb)

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(usrRepo, mailSvc)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:       fmt.Sprintf(":%d", core.Conf.Server.Port),
		Logger:        logger,
		Authz:         authz.NewEngine(classRepo, taskRepo, subRepo, prjRepo),
		UserSvc:       usrSvc,
		ClassSvc:      classroom.NewClassService(classRepo),
		PostSvc:       classroom.NewPostService(postRepo),
		TaskSvc:       classroom.NewTaskService(taskRepo),
		SubmissionSvc: classroom.NewSubmissionService(subRepo),
		MessageSvc:    messaging.NewService(msgRepo, usrRepo),
		ProjectSvc:    project.NewService(prjRepo, usrRepo, classRepo),
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
