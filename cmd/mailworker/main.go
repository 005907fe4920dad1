// The mailworker binary drains the Kafka mail queue and delivers each
// queued message over SMTP. It is only needed when the API server runs
// with MAIL_TRANSPORT=kafka.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/basekit-io/basekit/internal/logging"
	"github.com/basekit-io/basekit/internal/server/config"
	"github.com/basekit-io/basekit/internal/server/mail"
	"github.com/basekit-io/basekit/internal/server/telemetry"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	shutdownTracing := telemetry.Setup("basekit-mailworker")
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn(ctx, "tracing shutdown failed", "error", err)
		}
	}()

	mailer := mail.NewSMTPMailer(
		cfg.SMTPAddr,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.MailFromName,
	)

	consumer := mail.NewConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID, mailer, logger)

	logger.Info(ctx, "mailworker listening", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	if err := consumer.Listen(ctx); err != nil {
		log.Fatalf("mailworker stopped: %v", err)
	}
}
