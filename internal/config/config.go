package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/reward"
)

const (
	LedgerMemory   = "memory"
	LedgerRedis    = "redis"
	LedgerPostgres = "postgres"

	FirstTurnRandom  = "random"
	FirstTurnCreator = "creator"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis    `yaml:"redis"`
	Postgres Postgres `yaml:"postgres"`
	Ledger   Ledger   `yaml:"ledger"`
	Archive  Archive  `yaml:"archive"`
	Games    Games    `yaml:"games"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

type Ledger struct {
	// Driver is one of memory, redis or postgres.
	Driver string `yaml:"driver" env:"LEDGER_DRIVER" env-default:"memory"`
}

type Archive struct {
	Enabled bool          `yaml:"enabled" env:"ARCHIVE_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl" env:"ARCHIVE_TTL" env-default:"24h"`
}

type Games struct {
	// JoinTimeout is how long an open tic-tac-toe seat waits for an opponent.
	JoinTimeout time.Duration `yaml:"join-timeout" env-default:"120s"`
	TicTacToe   TicTacToe     `yaml:"tictactoe"`
	Hangman     Hangman       `yaml:"hangman"`
	Snake       Snake         `yaml:"snake"`
}

type Prizes struct {
	Win  int64 `yaml:"win" env-default:"0"`
	Draw int64 `yaml:"draw" env-default:"0"`
	Loss int64 `yaml:"loss" env-default:"0"`
}

type TicTacToe struct {
	Timeout time.Duration `yaml:"timeout" env-default:"300s"`
	// FirstTurn is random (X goes to either player) or creator.
	FirstTurn string `yaml:"first-turn" env-default:"random"`
	Prizes    Prizes `yaml:"prizes"`
}

type Hangman struct {
	Timeout time.Duration `yaml:"timeout" env-default:"300s"`
	Words   []string      `yaml:"words" env-default:"DISCORD,GAMING,STREAM,TWITCH,SERVEUR,NITRO,SKIN,SCORE,BADGE,RANG"`
	Prizes  Prizes        `yaml:"prizes"`
}

type Snake struct {
	Timeout         time.Duration `yaml:"timeout" env-default:"120s"`
	Width           int           `yaml:"width" env-default:"8"`
	Height          int           `yaml:"height" env-default:"8"`
	PointMultiplier int64         `yaml:"point-multiplier" env-default:"10"`
	Prizes          Prizes        `yaml:"prizes"`
}

// MustLoad - load all configurations in config.yml file. Variables from an optional .env
// file are exported first so they can override the yaml values.
func MustLoad(path string) *Config {
	_ = godotenv.Load()

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Timeout - inactivity deadline for an active session of kind.
func (that *Games) Timeout(kind entity.Kind) time.Duration {
	switch kind {
	case entity.KindTicTacToe:
		return that.TicTacToe.Timeout
	case entity.KindHangman:
		return that.Hangman.Timeout
	case entity.KindSnake:
		return that.Snake.Timeout
	default:
		return 0
	}
}

// RewardTable - prize policy per game kind.
func (that *Games) RewardTable() reward.Table {
	return reward.Table{
		entity.KindTicTacToe: that.TicTacToe.Prizes.policy(0),
		entity.KindHangman:   that.Hangman.Prizes.policy(0),
		entity.KindSnake:     that.Snake.Prizes.policy(that.Snake.PointMultiplier),
	}
}

func (that Prizes) policy(multiplier int64) reward.Policy {
	return reward.Policy{
		WinPrize:        that.Win,
		DrawPrize:       that.Draw,
		LossPrize:       that.Loss,
		PointMultiplier: multiplier,
	}
}
