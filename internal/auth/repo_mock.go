package auth

import (
	"context"
	"time"
)

type repoMock struct {
	nextID int
	users  map[string]*User
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		nextID: 1,
		users:  make(map[string]*User),
	}
}

func (r *repoMock) Add(_ context.Context, name, email, passwordHash string) (*User, error) {
	if _, ok := r.users[email]; ok {
		return nil, ErrEmailTaken
	}
	user := &User{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.nextID++
	r.users[email] = user
	return user, nil
}

func (r *repoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}
