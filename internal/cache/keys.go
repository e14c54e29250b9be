package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%d"
	ProductKeyPrefix = "product:%d"
	FeedKeyPrefix    = "feed:anon"
	CatalogueKey     = "products:trending"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	ProductTTL   = 10 * time.Minute
	FeedTTL      = 1 * time.Minute
	CatalogueTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProductKey(productID uint) string {
	return fmt.Sprintf(ProductKeyPrefix, productID)
}

// FeedKey is the anonymous-feed cache key. Per-viewer feeds are never cached:
// they depend on the viewer's own-post override and liked flags.
func FeedKey() string {
	return FeedKeyPrefix
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, FeedKey())
}

func InvalidateProduct(ctx context.Context, productID uint) {
	Invalidate(ctx, ProductKey(productID))
	Invalidate(ctx, CatalogueKey)
}
