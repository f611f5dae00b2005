package config

import "time"

type Config struct {
	Web  Web
	DB   DB
	Cors Cors
	Rate Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	Driver       string `conf:"default:postgres"`
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:courses"`
	DisableTLS   bool   `conf:"default:true"`
	Path         string `conf:"default:courses.db"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:0"`
	Migrate      bool   `conf:"default:true"`
}

type Cors struct {
	Origin string
}

type Rate struct {
	Burst    int           `conf:"default:20"`
	Interval time.Duration `conf:"default:100ms"`
	Expiry   time.Duration `conf:"default:10m"`
}
