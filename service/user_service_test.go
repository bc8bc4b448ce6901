package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUserNotFound = errors.New("user not found")

type fakeUserRepo struct {
	users map[string]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*types.User)}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *types.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) BatchCreateUser(ctx context.Context, users []*types.User) error {
	for _, user := range users {
		r.users[user.ID] = user
	}
	return nil
}

func (r *fakeUserRepo) GetUser(ctx context.Context, id string) (*types.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, errUserNotFound
}

func (r *fakeUserRepo) PaginateUser(ctx context.Context, page, limit int64) ([]*types.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, user *types.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) DeleteUser(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user := &types.User{ID: "u1", Username: "jsmith", Password: "s3cret"}
	require.NoError(t, svc.CreateUser(context.Background(), user))

	stored := repo.users["u1"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.True(t, utils.CheckPassword(stored.Password, "s3cret"))
	assert.NotZero(t, stored.CreateAt)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user := &types.User{ID: "u1", Username: "jsmith", Password: "old"}
	require.NoError(t, svc.CreateUser(context.Background(), user))

	require.NoError(t, svc.UpdateUser(context.Background(), "u1", &types.User{Password: "new"}))

	stored := repo.users["u1"]
	assert.True(t, utils.CheckPassword(stored.Password, "new"))
	assert.False(t, utils.CheckPassword(stored.Password, "old"))
}
