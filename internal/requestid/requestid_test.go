package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEnsureKeepsExistingID(t *testing.T) {
	ctx := With(context.Background(), "abc-123")

	got, id := Ensure(ctx)
	require.Equal(t, "abc-123", id)
	require.Equal(t, "abc-123", FromContext(got))
}

func TestEnsureGeneratesUUID(t *testing.T) {
	ctx, id := Ensure(context.Background())

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, id, FromContext(ctx))
}

func TestFromContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	require.Equal(t, "", FromContext(nil))
}
