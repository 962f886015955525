//go:build integration
// +build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlx"
)

var tables = []string{
	"enrollments", "payments", "lessons", "group_students", "lesson_groups",
	"teacher_subjects", "users", "students", "subjects", "teachers",
}

// PrepareDB starts a throwaway MySQL 8 container, migrates it and returns a pool on it.
// The container is terminated when the test ends.
func PrepareDB(t *testing.T) (*sqlx.DB, *core.Config) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	conf := core.NewTestConfig()
	conf.Database.User = "darasa"
	conf.Database.Password = "darasa"
	conf.Database.DisableTLS = true

	container, err := mysql.RunContainer(ctx,
		tc.WithImage("mysql:8.0.36"),
		mysql.WithDatabase(conf.Database.Name),
		mysql.WithUsername(conf.Database.User),
		mysql.WithPassword(conf.Database.Password),
	)
	if err != nil {
		t.Fatalf("mysql.RunContainer(): %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("container.Terminate(): %v", err)
		}
	})

	if conf.Database.Host, err = container.Host(ctx); err != nil {
		t.Fatalf("container.Host(): %v", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("container.MappedPort(): %v", err)
	}
	conf.Database.Port = port.Port()

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db.DB); err != nil {
		t.Fatalf("database.Migrate(): %v", err)
	}
	return db, conf
}

// ResetDB empties every table between tests sharing a container.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
	for _, tbl := range tables {
		if _, err := conn.ExecContext(ctx, "TRUNCATE TABLE "+tbl); err != nil {
			t.Fatalf("ResetDB(%s): %v", tbl, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
}

// SQLRepos returns the MySQL-backed repositories.
func SQLRepos(db *sqlx.DB, conf *core.Config) Repos {
	return Repos{
		Users:       sqlxrepos.NewUserRepository(db, conf),
		Teachers:    sqlxrepos.NewTeacherRepository(db, conf),
		Subjects:    sqlxrepos.NewSubjectRepository(db, conf),
		Groups:      sqlxrepos.NewGroupRepository(db, conf),
		Students:    sqlxrepos.NewStudentRepository(db, conf),
		Lessons:     sqlxrepos.NewLessonRepository(db, conf),
		Enrollments: sqlxrepos.NewEnrollmentRepository(db, conf),
		Payments:    sqlxrepos.NewPaymentRepository(db, conf),
	}
}
