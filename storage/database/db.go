package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/services/metrics"
	"github.com/trezcool/darasa/storage/database/migrations"
)

var identRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DSN builds the go-sql-driver/mysql connection string. DATE, TIME and DATETIME columns are read back as strings.
func DSN(dbName string, admin bool, conf *core.Config) string {
	c := mysql.NewConfig()
	c.User = conf.Database.User
	c.Passwd = conf.Database.Password
	if admin && conf.Database.AdminUser != "" {
		c.User = conf.Database.AdminUser
		c.Passwd = conf.Database.AdminPassword
	}
	c.Net = "tcp"
	c.Addr = conf.Database.Address()
	c.DBName = dbName
	c.ParseTime = false
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4", "time_zone": "'+00:00'"}
	if !conf.Database.DisableTLS {
		c.TLSConfig = "true"
	}
	return c.FormatDSN()
}

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	return sqlx.Open(conf.Database.Engine, DSN(dbName, admin, conf))
}

// Open connects to the app database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	db.SetMaxIdleConns(conf.Database.MaxIdleConns)
	db.SetConnMaxLifetime(conf.Database.ConnMaxLifetime)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		start := time.Now()
		err = db.PingContext(context.Background())
		metrics.ObserveDBPing(time.Since(start))
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" || conf.Database.User == conf.Database.AdminUser {
		return nil
	}
	if !identRegex.MatchString(conf.Database.User) {
		return errors.Errorf("invalid app user name %q", conf.Database.User)
	}

	q := fmt.Sprintf("CREATE USER IF NOT EXISTS %s@'%%' IDENTIFIED BY %s", quote(conf.Database.User), quote(conf.Database.Password))
	if _, err := db.Exec(q); err != nil {
		return errors.Wrap(err, "creating app user")
	}
	q = fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO %s@'%%'", conf.Database.Name, quote(conf.Database.User))
	if _, err := db.Exec(q); err != nil {
		return errors.Wrap(err, "granting app user")
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	if !identRegex.MatchString(conf.Database.Name) {
		return errors.Errorf("invalid database name %q", conf.Database.Name)
	}
	q := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", conf.Database.Name)
	if _, err := db.Exec(q); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// CreateIfNotExist creates the app database and, when admin credentials are configured, the app user.
func CreateIfNotExist(conf *core.Config) error {
	db, err := open("", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createDB(db, conf); err != nil {
		return err
	}
	if conf.Database.AdminUser != "" {
		if err = createAppUser(db, conf); err != nil {
			return err
		}
	}
	return nil
}

// RunMigrations runs a goose command ("up", "down", "status", "version"...) against the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return errors.Wrapf(err, "running migrations %q", command)
	}
	return nil
}

func Migrate(db *sql.DB) error {
	return RunMigrations(context.Background(), db, "up")
}
