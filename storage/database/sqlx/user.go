package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const userColumns = "u.id, u.email, u.password_hash, u.role, u.teacher_id, u.is_active, u.last_login, u.created_at, u.updated_at"

var errUnknownTeacher = core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "unknown teacher"})

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB, conf *core.Config) *userRepository {
	return &userRepository{repo: newRepo(db, conf)}
}

func (r userRepository) CountUsers(ctx context.Context) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return count, nil
}

func (r userRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, teacher_id, is_active) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.Role, u.TeacherID, u.IsActive,
	)
	if err != nil {
		return user.User{}, r.trapWriteErr(err, "inserting user")
	}
	id, err := insertID(res, "inserting user")
	if err != nil {
		return user.User{}, err
	}
	return r.getBy(ctx, "u.id", id)
}

func (r userRepository) QueryUsers(ctx context.Context) ([]user.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	users := make([]user.View, 0)
	err := r.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+`,
			t.first_name AS teacher_first_name,
			t.last_name AS teacher_last_name
		FROM users u
		LEFT JOIN teachers t ON t.id = u.teacher_id
		ORDER BY u.created_at DESC, u.id DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

func (r userRepository) GetUser(ctx context.Context, id int64) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getBy(ctx, "u.id", id)
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getBy(ctx, "u.email", email)
}

func (r userRepository) getBy(ctx context.Context, col string, val interface{}) (user.User, error) {
	var u user.User
	if err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users u WHERE "+col+" = ?", val); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	return u, nil
}

func (r userRepository) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET email = ?, role = ?, teacher_id = ?, is_active = ? WHERE id = ?",
		u.Email, u.Role, u.TeacherID, u.IsActive, u.ID,
	)
	if err != nil {
		return user.User{}, r.trapWriteErr(err, "updating user")
	}
	return r.getBy(ctx, "u.id", u.ID)
}

func (r userRepository) trapWriteErr(err error, msg string) error {
	switch {
	case isDuplicate(err):
		return user.ErrEmailExists
	case isMissingReference(err):
		return errUnknownTeacher
	}
	return errors.Wrap(err, msg)
}

func (r userRepository) SetPassword(ctx context.Context, id int64, hash []byte) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}

func (r userRepository) SetLastLogin(ctx context.Context, id int64, at string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at, id); err != nil {
		return errors.Wrap(err, "updating last login")
	}
	return nil
}

func (r userRepository) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}
