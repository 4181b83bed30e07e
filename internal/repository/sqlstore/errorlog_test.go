package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/model"
)

func TestErrorLogRepo_AppendRecent(t *testing.T) {
	db := newTestDB(t)
	r := NewErrorLogRepo(db)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Append(ctx, model.ErrorRecord{
			ID:        fmt.Sprintf("e%d", i),
			Code:      "UNKNOWN",
			Message:   "An unexpected error occurred. Please try again.",
			Detail:    "disk full",
			Op:        "tasks.add",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	recs, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "e2", recs[0].ID)
	require.Equal(t, "e1", recs[1].ID)
	require.Equal(t, "tasks.add", recs[0].Op)

	all, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
