package config

import (
	"strconv"
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"
)

// Client holds the connection settings for an event socket client.
// Unset fields keep their library defaults when consolidated.
type Client struct {
	Host     null.String `ini:"host" envconfig:"ESL_HOST"`
	Port     null.Int    `ini:"port" envconfig:"ESL_PORT"`
	User     null.String `ini:"user" envconfig:"ESL_USER"`
	Password null.String `ini:"password" envconfig:"ESL_PASSWORD"`
	// Timeout bounds the connect-and-authenticate handshake; zero keeps
	// it unbounded.
	Timeout null.Int `ini:"timeout_ms" envconfig:"ESL_TIMEOUT_MS"`
}

// NewClient returns the defaults the demo client ships with.
func NewClient() Client {
	return Client{
		Host:     null.NewString("localhost", false),
		Port:     null.NewInt(8021, false),
		Password: null.NewString("ClueCon", false),
	}
}

// Apply overlays every set field of other onto c.
func (c Client) Apply(other Client) Client {
	if other.Host.Valid {
		c.Host = other.Host
	}
	if other.Port.Valid {
		c.Port = other.Port
	}
	if other.User.Valid {
		c.User = other.User
	}
	if other.Password.Valid {
		c.Password = other.Password
	}
	if other.Timeout.Valid {
		c.Timeout = other.Timeout
	}
	return c
}

// FromFile collects the [client] section of a configuration file, along
// with any keys that appear before the first section header.
func FromFile(f *File) Client {
	var c Client
	if f == nil {
		return c
	}
	f.Rewind()
	for {
		p, ok := f.Next()
		if !ok {
			break
		}
		if p.Section != "" && p.Section != "client" {
			continue
		}
		switch p.Key {
		case "host":
			c.Host = null.StringFrom(p.Value)
		case "port":
			if n, err := strconv.Atoi(p.Value); err == nil {
				c.Port = null.IntFrom(int64(n))
			}
		case "user":
			c.User = null.StringFrom(p.Value)
		case "password":
			c.Password = null.StringFrom(p.Value)
		case "timeout_ms":
			if n, err := strconv.Atoi(p.Value); err == nil {
				c.Timeout = null.IntFrom(int64(n))
			}
		}
	}
	return c
}

// FromEnv collects ESL_* environment overrides.
func FromEnv() (Client, error) {
	var c Client
	if err := envconfig.Process("esl", &c); err != nil {
		return Client{}, err
	}
	return c, nil
}

// TimeoutDuration returns the configured handshake budget.
func (c Client) TimeoutDuration() time.Duration {
	if !c.Timeout.Valid {
		return 0
	}
	return time.Duration(c.Timeout.Int64) * time.Millisecond
}
