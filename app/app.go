package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookdesk/librarian/config"
	"github.com/bookdesk/librarian/internal/handler"
	"github.com/bookdesk/librarian/internal/notify"
	"github.com/bookdesk/librarian/internal/repository"
	"github.com/bookdesk/librarian/internal/server"
	"github.com/bookdesk/librarian/internal/service"
	"github.com/bookdesk/librarian/migrations"
	"github.com/bookdesk/librarian/pkg/kafka"
	"github.com/bookdesk/librarian/pkg/logger"
	"github.com/bookdesk/librarian/pkg/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "librarian")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	catalogRepo, err := repository.NewCatalogRepository(db, log)
	if err != nil {
		log.Fatal("catalog repo", zap.Error(err))
	}
	loanRepo, err := repository.NewLoanRepository(db, log)
	if err != nil {
		log.Fatal("loan repo", zap.Error(err))
	}
	studentRepo, err := repository.NewStudentRepository(db, log)
	if err != nil {
		log.Fatal("student repo", zap.Error(err))
	}

	var events service.EventPublisher
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close() //nolint:errcheck
		events = kafka.NewPublisher(producer)
	}
	notifier := notify.NewSMTPNotifier(cfg.SMTP, log)

	catalogSvc := service.NewCatalogService(catalogRepo, log)
	loanSvc := service.NewLoanService(loanRepo, events, cfg.Loan.PeriodDays, log)
	overdueSvc := service.NewOverdueService(loanRepo, notifier, log)
	studentSvc := service.NewStudentService(studentRepo, log)

	h := handler.New(catalogSvc, loanSvc, overdueSvc, studentSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(cfg.Log))
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g := new(errgroup.Group)
	g.Go(func() error {
		return srv.Run()
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		log.Error("server run", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
