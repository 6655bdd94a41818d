package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/gateway"
	"github.com/Astemirdum/lending-service/lending/internal/gateway/stripe"
	"github.com/Astemirdum/lending-service/lending/internal/handler"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/lending/internal/server"
	"github.com/Astemirdum/lending-service/lending/internal/service/borrowing"
	"github.com/Astemirdum/lending-service/lending/internal/service/catalog"
	"github.com/Astemirdum/lending-service/lending/internal/service/events"
	"github.com/Astemirdum/lending-service/lending/internal/service/jobs"
	"github.com/Astemirdum/lending-service/lending/internal/service/notify"
	"github.com/Astemirdum/lending-service/lending/internal/service/payment"
	"github.com/Astemirdum/lending-service/lending/migrations"
	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log, closeLog := logger.NewLogger(cfg.Log, "lending")
	defer closeLog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	gw := gateway.Guard(stripe.New(cfg.Stripe, log), circuit_breaker.New(cfg.CircuitBreaker), cfg.Stripe.Timeout)

	direct, deliver := directNotifier(cfg.Telegram, log)
	var (
		notifier notify.Notifier = direct
		emitter  events.Emitter  = events.Nop{}
		producer sarama.SyncProducer
		group    sarama.ConsumerGroup
	)
	if cfg.Kafka.Enabled() {
		if producer, err = kafka.NewProducer(cfg.Kafka); err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		pub := kafka.NewPublisher(producer)
		emitter = events.NewKafka(pub, log)

		if cfg.NotifyMode == config.NotifyKafka {
			notifier = notify.NewQueue(pub, log)
			if group, err = kafka.NewConsumer(cfg.Kafka, kafka.NotifierConsumerGroup); err != nil {
				log.Fatal("kafka.NewConsumer", zap.Error(err))
			}
			go kafka.Consume(ctx, group, handler.NewConsumer(deliver, log), log, kafka.NotificationsTopic)
		}
	} else if cfg.NotifyMode == config.NotifyKafka {
		log.Warn("NOTIFY_MODE=kafka without KAFKA_ADDRS, notifying directly")
	}

	paymentSvc := payment.NewService(repo, gw, emitter, cfg.Stripe, log)
	borrowingSvc := borrowing.NewService(repo, paymentSvc, notifier, emitter, log)
	catalogSvc := catalog.NewService(repo, log)

	var opts []handler.Option
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis ping", zap.Error(err))
		}
		opts = append(opts, handler.WithIdempotency(repository.NewIdempotencyStore(rdb, cfg.Redis.KeyTTL)))
	}

	var scheduler *jobs.Scheduler
	if !cfg.Jobs.Disabled {
		jobsSvc := jobs.NewService(repo, gw, notifier, emitter, cfg.Jobs, log)
		if scheduler, err = jobs.NewScheduler(jobsSvc, cfg.Jobs, log); err != nil {
			log.Fatal("jobs.NewScheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	h := handler.New(catalogSvc, borrowingSvc, paymentSvc, log, opts...)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if scheduler != nil {
		if err = scheduler.Stop(closeCtx); err != nil {
			log.Error("scheduler.Stop", zap.Error(err))
		}
	}
	cancel()
	if group != nil {
		if err = group.Close(); err != nil {
			log.Error("consumer close", zap.Error(err))
		}
	}
	if producer != nil {
		if err = producer.Close(); err != nil {
			log.Error("producer close", zap.Error(err))
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}

// directNotifier picks Telegram when a bot token is set, otherwise the log sink.
// The deliver func is what the queue consumer uses to hand texts over.
func directNotifier(cfg config.Telegram, log *zap.Logger) (notify.Notifier, func(ctx context.Context, text string) error) {
	if cfg.BotToken != "" {
		tg, err := notify.NewTelegram(cfg, log)
		if err == nil {
			return tg, tg.Send
		}
		log.Error("telegram init, falling back to log notifications", zap.Error(err))
	}
	l := notify.NewLog(log)
	return l, func(ctx context.Context, text string) error {
		l.Notify(ctx, text)
		return nil
	}
}
