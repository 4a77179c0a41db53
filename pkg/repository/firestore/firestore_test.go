package firestore_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/repository/firestore"
	"github.com/secmon-lab/repovault/pkg/repository/testhelper"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
	"github.com/secmon-lab/repovault/pkg/utils/testutil"
)

func TestFirestoreDatabase(t *testing.T) {
	projectID := testutil.GetEnvOrSkip(t, "TEST_FIRESTORE_PROJECT_ID")
	databaseID := testutil.GetEnvOrDefault("TEST_FIRESTORE_DATABASE_ID", "(default)")

	ctx := context.Background()
	db, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err)
	defer safe.Close(db)

	testhelper.TestAll(t, db)
}

func TestToIndexID(t *testing.T) {
	// Valid cases
	id, err := firestore.ToIndexID("alice@example.com")
	gt.NoError(t, err)
	gt.V(t, id).Equal("alice@example.com")

	id, err = firestore.ToIndexID("my-repo.v2")
	gt.NoError(t, err)
	gt.V(t, id).Equal("my-repo.v2")

	// Invalid cases
	for _, v := range []string{"", ".", "..", "a/b", "__reserved__"} {
		_, err = firestore.ToIndexID(v)
		gt.Error(t, err)
	}
}
