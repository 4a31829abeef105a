package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	TelegramToken string

	LLMAPIKey   string
	LLMEndpoint string
	LLMModel    string

	CheckinIntervalMin  int
	CheckinStartHour    int
	CheckinEndHour      int
	CheckinStartWeekday time.Weekday
	CheckinEndWeekday   time.Weekday

	DailyReminderHour   int
	DailyReminderMinute int
	DailySkipWeekday    time.Weekday

	DigestWeekday time.Weekday
	DigestHour    int
	DigestMinute  int

	CancelCommandPolicy string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "nosybot_user"),
		DBPassword: getEnv("DB_PASSWORD", "nosybot_pass"),
		DBName:     getEnv("DB_NAME", "nosybot_db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),

		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMEndpoint: getEnv("LLM_ENDPOINT", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-3.5-turbo"),

		CheckinIntervalMin:  getEnvInt("CHECKIN_INTERVAL_MIN", 30),
		CheckinStartHour:    getEnvInt("CHECKIN_START_HOUR", 9),
		CheckinEndHour:      getEnvInt("CHECKIN_END_HOUR", 17),
		CheckinStartWeekday: time.Weekday(getEnvInt("CHECKIN_START_WEEKDAY", int(time.Monday))),
		CheckinEndWeekday:   time.Weekday(getEnvInt("CHECKIN_END_WEEKDAY", int(time.Friday))),

		DailyReminderHour:   getEnvInt("DAILY_REMINDER_HOUR", 9),
		DailyReminderMinute: getEnvInt("DAILY_REMINDER_MINUTE", 0),
		DailySkipWeekday:    time.Weekday(getEnvInt("DAILY_SKIP_WEEKDAY", int(time.Sunday))),

		DigestWeekday: time.Weekday(getEnvInt("DIGEST_WEEKDAY", int(time.Sunday))),
		DigestHour:    getEnvInt("DIGEST_HOUR", 20),
		DigestMinute:  getEnvInt("DIGEST_MINUTE", 0),

		CancelCommandPolicy: getEnv("CANCEL_COMMAND_POLICY", "consume"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("⚠️  Invalid integer for %s, using default %d", key, defaultVal)
	}
	return defaultVal
}
