package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/permkit/permkit/pkg/authz"
)

func TestActorContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		actor := authz.Actor{TenantID: "acme", UserID: "u1", LocationID: "berlin"}
		ctx := authz.WithActor(context.Background(), actor)

		got, ok := authz.ActorFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, actor, got)
	})

	t.Run("absent actor", func(t *testing.T) {
		t.Parallel()

		_, ok := authz.ActorFromContext(context.Background())
		assert.False(t, ok)
	})
}
