package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CountUsers(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.users), nil
}

// checkRefs mirrors the unique email index and the teacher foreign key.
func (repo *userRepository) checkRefs(usr user.User) error {
	for _, u := range repo.db.users {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.ErrEmailExists
		}
	}
	if usr.TeacherID != nil {
		if _, ok := repo.db.teachers[*usr.TeacherID]; !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "unknown teacher"})
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkRefs(usr); err != nil {
		return user.User{}, err
	}
	usr.ID = repo.db.nextID()
	usr.CreatedAt = now()
	usr.UpdatedAt = usr.CreatedAt
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context) ([]user.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keys := ids(repo.db.users)
	users := make([]user.View, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- { // newest first
		v := user.View{User: repo.db.users[keys[i]]}
		if v.TeacherID != nil {
			if t, ok := repo.db.teachers[*v.TeacherID]; ok {
				v.TeacherFirstName, v.TeacherLastName = &t.FirstName, &t.LastName
			}
		}
		users = append(users, v)
	}
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, id int64) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if err := repo.checkRefs(usr); err != nil {
		return user.User{}, err
	}
	stored.Email = usr.Email
	stored.Role = usr.Role
	stored.TeacherID = usr.TeacherID
	stored.IsActive = usr.IsActive
	stored.UpdatedAt = now()
	repo.db.users[usr.ID] = stored
	return stored, nil
}

func (repo *userRepository) SetPassword(_ context.Context, id int64, hash []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if usr, ok := repo.db.users[id]; ok {
		usr.PasswordHash = hash
		repo.db.users[id] = usr
	}
	return nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id int64, at string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if usr, ok := repo.db.users[id]; ok {
		usr.LastLogin = &at
		repo.db.users[id] = usr
	}
	return nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.users, id)
	return nil
}
