package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	LogLevel        string
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Storage
	StoreBackend string // "postgres" or "firestore"
	DatabaseURL  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBDebug      bool

	// Firebase / Google Cloud
	FirebaseCredentials string
	GoogleProjectID     string

	// Push
	PushBackend    string // "fcm", "sns" or "none"
	AppBaseURL     string // absolute https origin of the web app, for push click links
	AWSRegion      string
	SNSPlatformARN string

	// Event-triggered notifications
	EventTransport     string // "pubsub", "kafka" or "none"
	PubSubTopic        string
	PubSubSubscription string
	KafkaBrokers       []string
	KafkaGroupID       string
	KafkaTopic         string

	// Supervisors
	SchedulerTimezone      *time.Location
	OverdueVisitSchedule   string
	PendingOrderSchedule   string
	BusinessHoursStart     int
	BusinessHoursEnd       int
	OverdueRecipientEmail  string
	OverdueNotifyAssignee  bool
	PendingOrderRecipients []string
	TaskReminderInterval   time.Duration
}

// Load reads .env, an optional YAML file named by CONFIG_FILE and the
// process environment, in increasing order of precedence.
func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			logrus.WithError(err).WithField("file", file).Warn("[Config] could not read config file, using environment only")
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_ACCESS_EXPIRY", "24h")
	v.SetDefault("STORE_BACKEND", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "genius_keeper")
	v.SetDefault("PUSH_BACKEND", "fcm")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EVENT_TRANSPORT", "none")
	v.SetDefault("PUBSUB_TOPIC", "notification-requests")
	v.SetDefault("PUBSUB_SUBSCRIPTION", "notification-requests-sub")
	v.SetDefault("KAFKA_GROUP_ID", "genius-keeper-notifications")
	v.SetDefault("KAFKA_TOPIC", "notification-requests")
	v.SetDefault("SCHEDULER_TIMEZONE", "America/Mexico_City")
	v.SetDefault("OVERDUE_VISIT_SCHEDULE", "0 8 * * *")
	v.SetDefault("PENDING_ORDER_SCHEDULE", "0 * * * *")
	v.SetDefault("BUSINESS_HOURS_START", 7)
	v.SetDefault("BUSINESS_HOURS_END", 20)
	v.SetDefault("TASK_REMINDER_INTERVAL", "1m")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:            v.GetString("PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTAccessExpiry: parseDuration(v, "JWT_ACCESS_EXPIRY", 24*time.Hour),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetString("DB_PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBDebug:      v.GetBool("DB_DEBUG"),

		FirebaseCredentials: v.GetString("FIREBASE_CREDENTIALS"),
		GoogleProjectID:     v.GetString("GOOGLE_PROJECT_ID"),

		PushBackend:    strings.ToLower(v.GetString("PUSH_BACKEND")),
		AWSRegion:      v.GetString("AWS_REGION"),
		SNSPlatformARN: v.GetString("SNS_PLATFORM_ARN"),
		AppBaseURL:     strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),

		EventTransport:     strings.ToLower(v.GetString("EVENT_TRANSPORT")),
		PubSubTopic:        v.GetString("PUBSUB_TOPIC"),
		PubSubSubscription: v.GetString("PUBSUB_SUBSCRIPTION"),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaGroupID:       v.GetString("KAFKA_GROUP_ID"),
		KafkaTopic:         v.GetString("KAFKA_TOPIC"),

		SchedulerTimezone:      parseLocation(v.GetString("SCHEDULER_TIMEZONE")),
		OverdueVisitSchedule:   v.GetString("OVERDUE_VISIT_SCHEDULE"),
		PendingOrderSchedule:   v.GetString("PENDING_ORDER_SCHEDULE"),
		BusinessHoursStart:     v.GetInt("BUSINESS_HOURS_START"),
		BusinessHoursEnd:       v.GetInt("BUSINESS_HOURS_END"),
		OverdueRecipientEmail:  v.GetString("OVERDUE_RECIPIENT_EMAIL"),
		OverdueNotifyAssignee:  v.GetBool("OVERDUE_NOTIFY_ASSIGNEE"),
		PendingOrderRecipients: splitList(v.GetString("PENDING_ORDER_RECIPIENTS")),
		TaskReminderInterval:   parseDuration(v, "TASK_REMINDER_INTERVAL", time.Minute),
	}
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		logrus.WithField("key", key).WithField("value", raw).Warn("[Config] invalid duration, using default")
		return fallback
	}
	return parsed
}

func parseLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logrus.WithError(err).WithField("timezone", name).Warn("[Config] unknown time zone, falling back to UTC")
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
