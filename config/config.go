package config

import "os"

type Config struct {
	MongoURI             string
	RedisAddr            string
	HTTPPort             string
	SheetID              string
	SheetName            string
	SheetCredentialsFile string
}

func Load() *Config {
	return &Config{
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		SheetID:              getEnv("SHEET_ID", ""),
		SheetName:            getEnv("SHEET_NAME", "Sheet1"),
		SheetCredentialsFile: getEnv("SHEET_CREDENTIALS_FILE", "credentials.json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
