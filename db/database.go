package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/circleci/mysqlex/config/secret"
	"github.com/circleci/mysqlex/o11y"
)

type Config struct {
	Host string
	Port int
	User string
	Pass secret.String
	Name string
	TLS  bool
}

// DSN builds the go-sql-driver DSN for the config. appName is sent to the server as the
// program_name connection attribute.
func (c Config) DSN(appName string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.User = c.User
	cfg.Passwd = c.Pass.Raw()
	cfg.DBName = c.Name
	cfg.ParseTime = true
	cfg.Timeout = 5 * time.Second
	if c.TLS {
		cfg.TLSConfig = "true"
	}
	if appName != "" {
		cfg.ConnectionAttributes = "program_name:" + appName
	}
	return cfg.FormatDSN()
}

func New(ctx context.Context, dbName, appName string, options Config) (db *sqlx.DB, err error) {
	_, span := o11y.StartSpan(ctx, "config: connect to database")
	defer o11y.End(span, &err)

	span.AddField("database", dbName)
	span.AddField("host", fmt.Sprintf("%s:%d", options.Host, options.Port))
	span.AddField("dbname", options.Name)
	span.AddField("username", options.User)

	db, err = sqlx.Open("mysql", options.DSN(appName))
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(time.Hour)
	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(50)
	return db, nil
}
