package config

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	SourceTimer = "timer"
	SourceKafka = "kafka"
	SourceNATS  = "nats"
)

type Config struct {
	HTTPAddr      string
	PublicBaseURL string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	RedisHost string
	RedisPort string
	CartTTL   time.Duration
	CartIdle  time.Duration

	KafkaBroker      string
	StatusTopic      string
	OrderEventsTopic string
	ConsumerGroup    string

	NATSURL string

	StatusSource   string
	TimerInterval  time.Duration
	TableOccupancy float64
	Location       *time.Location
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func getLocation(key string) *time.Location {
	name := os.Getenv(key)
	if name == "" {
		return time.Local
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.Local
}

// instanceGroup names a consumer group of its own for this process so every
// replica reads every status partition.
func instanceGroup() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = strconv.Itoa(os.Getpid())
	}
	return "order-svc-" + host
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

// Load reads the environment. Backends whose host is unset stay disabled.
func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8081"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: getenv("REDIS_PORT", "6379"),
		CartTTL:   getDuration("CART_TTL", 7*24*time.Hour),
		CartIdle:  getDuration("CART_IDLE", 10*time.Minute),

		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		StatusTopic:      getenv("STATUS_TOPIC", "order-status"),
		OrderEventsTopic: getenv("ORDER_EVENTS_TOPIC", "order-events"),
		ConsumerGroup:    getenv("KAFKA_GROUP_ID", instanceGroup()),

		NATSURL: os.Getenv("NATS_URL"),

		StatusSource:   getenv("STATUS_SOURCE", SourceTimer),
		TimerInterval:  getDuration("TIMER_INTERVAL", 10*time.Second),
		TableOccupancy: getFloat("TABLE_OCCUPANCY", 0.3),
		Location:       getLocation("RESTAURANT_TZ"),
	}
}

func (c Config) PostgresEnabled() bool { return c.DBHost != "" }

func (c Config) RedisEnabled() bool { return c.RedisHost != "" }

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func MustInitPostgres(cfg Config, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err = db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	return client
}

func MustInitNATS(cfg Config, logger *zap.Logger) *nats.Conn {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("order-svc"))
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	return conn
}

func NewKafkaReader(cfg Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
	})
}

// NewKafkaWriter hashes message keys to partitions so all messages of one
// order stay in order.
func NewKafkaWriter(cfg Config, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}
