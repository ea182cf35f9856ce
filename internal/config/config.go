package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port   string
	Env    string
	APIUrl string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret               string
	JWTAccessTokenDuration  time.Duration
	JWTRefreshTokenDuration time.Duration

	// WeChat mini program
	WXAppID     string
	WXAppSecret string

	// Aliyun SMS
	AliyunAccessKeyID     string
	AliyunAccessKeySecret string
	AliyunRegionID        string
	AliyunSMSSignName     string
	AliyunSMSTemplateCode string

	// SMS delivery
	SMSProvider string // "aliyun" | "console"
	SMSTemplate string
	SMSTimeout  time.Duration

	// Phone encryption (AES-CBC, fixed key and IV)
	AESKey string
	AESIV  string

	// Risk control
	SenderDailyLimit   int
	ReceiverDailyLimit int
	SensitiveWords     []string

	// Verification codes
	VerificationCodeTTL time.Duration

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		APIUrl: getEnv("API_URL", "http://localhost:8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "beslove"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "beslove_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "Asia/Shanghai"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),
		JWTRefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", "168h"),

		// WeChat
		WXAppID:     getEnv("WX_APP_ID", ""),
		WXAppSecret: getEnv("WX_APP_SECRET", ""),

		// Aliyun SMS
		AliyunAccessKeyID:     getEnv("ALIYUN_ACCESS_KEY_ID", ""),
		AliyunAccessKeySecret: getEnv("ALIYUN_ACCESS_KEY_SECRET", ""),
		AliyunRegionID:        getEnv("ALIYUN_REGION_ID", "cn-hangzhou"),
		AliyunSMSSignName:     getEnv("ALIYUN_SMS_SIGN_NAME", "BesLove"),
		AliyunSMSTemplateCode: getEnv("ALIYUN_SMS_TEMPLATE_CODE", ""),

		// SMS delivery
		SMSProvider: getEnv("SMS_PROVIDER", "aliyun"),
		SMSTemplate: getEnv("SMS_TEMPLATE", "【BesLove】💌 你有一条来自心动之人的消息：\n\n{content}\n\n—— 愿每一份真心都不被辜负"),
		SMSTimeout:  getEnvAsDuration("SMS_TIMEOUT", "10s"),

		// Phone encryption. Keys must be exactly 32 and 16 bytes; the
		// defaults exist so local development boots without an .env file.
		AESKey: getEnv("AES_KEY", "beslove-default-aes-256-key-val!"),
		AESIV:  getEnv("AES_IV", "beslove-init-vec"),

		// Risk control
		SenderDailyLimit:   getEnvAsInt("SENDER_DAILY_LIMIT", 3),
		ReceiverDailyLimit: getEnvAsInt("RECEIVER_DAILY_LIMIT", 2),
		SensitiveWords: getEnvAsSlice("SENSITIVE_WORDS", []string{
			"微信", "wx", "QQ", "电话", "手机号",
			"傻逼", "fuck", "shit",
			"赌博", "色情", "毒品",
		}),

		// Verification codes
		VerificationCodeTTL: getEnvAsDuration("VERIFICATION_CODE_TTL", "10m"),

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
