package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// LeaderboardBackend is one of "file", "redis" or "postgres".
	LeaderboardBackend string
	LeaderboardFile    string
	LeaderboardTopN    int

	DBUrl         string
	RedisAddr     string
	RedisPassword string
	// AnnounceChannel is the Redis pub/sub channel relayed to every
	// connection. Empty disables announcements.
	AnnounceChannel string

	JWTSecret         string
	AdminPasswordHash string

	AllowedOrigins []string

	ReconnectGrace     time.Duration
	RoundEndDelay      time.Duration
	MinMessageInterval time.Duration
}

func LoadConfig() Config {
	err := godotenv.Load()

	if err != nil {
		log.Println("No .env file found. Using environment variables.")
	}

	return Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		LeaderboardBackend: strings.ToLower(getEnv("LEADERBOARD_BACKEND", "file")),
		LeaderboardFile:    getEnv("LEADERBOARD_FILE", "leaderboard.json"),
		LeaderboardTopN:    getInt("LEADERBOARD_TOP_N", 10),

		DBUrl:         os.Getenv("DB_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AnnounceChannel: announceChannel(),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		ReconnectGrace:     getDuration("RECONNECT_GRACE", 30*time.Second),
		RoundEndDelay:      getDuration("ROUND_END_DELAY", 3*time.Second),
		MinMessageInterval: getDuration("MIN_MESSAGE_INTERVAL", 500*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
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

func announceChannel() string {
	value, exists := os.LookupEnv("ANNOUNCE_CHANNEL")
	if !exists {
		return "scribble:announcements"
	}
	return strings.TrimSpace(value)
}
