package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes the connection the checkpoint store runs on. The URL may
// carry auth and a DB index; timeouts are seconds. ClientName shows up in
// CLIENT LIST so the analysis server is identifiable on a shared instance.
type Config struct {
	URL          string `split_words:"true" required:"true"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
	ClientName   string `split_words:"true" default:"feedback-insight-server"`
}

func (r *Config) options() (*redis.Options, error) {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second
	if r.ClientName != "" {
		opts.ClientName = r.ClientName
	}

	return opts, nil
}

func (r *Config) New() (*redis.Client, error) {
	opts, err := r.options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	cmd := client.Ping(context.Background())
	if cmd.Err() != nil {
		return nil, cmd.Err()
	}

	return client, nil
}

func (r *Config) MustNew() *redis.Client {
	client, err := r.New()
	if err != nil {
		panic(err)
	}

	return client
}
