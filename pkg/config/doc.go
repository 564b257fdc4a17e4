// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for tag-driven parsing:
//
//	type Settings struct {
//	    Queue  queue.Config
//	    Log    logger.Config
//	    Redis  redis.Config
//	}
//
//	var s Settings
//	if err := config.Load(&s, "deploy/.env"); err != nil {
//	    log.Fatal(err)
//	}
//
// Real environment variables always take precedence over file values.
package config
