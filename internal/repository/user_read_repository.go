package repository

import (
	"context"
	"strconv"

	"github.com/eaglebank/auth-api/shared/models"
	sharedredis "github.com/eaglebank/auth-api/shared/redis"
)

const userViewKeyPrefix = "user:view:"

// UserReadRepository serves user views from the Redis cache when one is
// configured, falling back to the store on a miss.
type UserReadRepository struct {
	store UserStore
	cache *sharedredis.ViewCache[models.UserView]
}

// NewUserReadRepository accepts a nil cache, in which case every read goes
// to the store.
func NewUserReadRepository(store UserStore, cache *sharedredis.ViewCache[models.UserView]) *UserReadRepository {
	return &UserReadRepository{store: store, cache: cache}
}

func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.UserView, error) {
	if r.cache != nil {
		if view, ok := r.cache.Get(ctx, userViewKey(id)); ok {
			return view, nil
		}
	}

	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := models.NewUserView(user)
	r.CacheUserView(ctx, view)
	return view, nil
}

// CacheUserView refreshes the cached view. Called after every mutation.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, userViewKey(view.ID), view)
}

func (r *UserReadRepository) InvalidateUserView(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, userViewKey(userID))
}

func userViewKey(id int64) string {
	return userViewKeyPrefix + strconv.FormatInt(id, 10)
}
