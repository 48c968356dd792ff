/*
Package mongofixture will setup an isolated Mongo DB for your tests, so they don't interfere.
*/
package mongofixture

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gotest.tools/v3/assert"

	"github.com/uploadhub/printdocs/o11y"
)

type Fixture struct {
	DB   *mongo.Database
	Name string
	URI  string
}

// Setup connects to the server named by MONGO_URI and hands back a database
// with a unique name, dropped on cleanup. Tests are skipped when MONGO_URI is
// not set, so the rest of the suite runs without a live server.
func Setup(ctx context.Context, t testing.TB) *Fixture {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping mongo fixture test")
	}

	ctx, span := o11y.StartSpan(ctx, "mongofixture: setup")
	defer span.End()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName("test").
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	assert.Assert(t, err)

	t.Cleanup(func() {
		assert.Check(t, client.Disconnect(ctx))
	})

	name := fmt.Sprintf("%s-%s", randomSuffix(), strings.ReplaceAll(t.Name(), "/", "_"))
	name = truncate(name)
	span.AddField("name", name)

	db := client.Database(name)
	t.Cleanup(func() {
		assert.Check(t, db.Drop(ctx))
	})

	return &Fixture{
		DB:   db,
		Name: name,
		URI:  uri,
	}
}

// Seed inserts docs into the named collection.
func (f *Fixture) Seed(ctx context.Context, t testing.TB, collection string, docs ...interface{}) {
	t.Helper()
	if len(docs) == 0 {
		return
	}
	_, err := f.DB.Collection(collection).InsertMany(ctx, docs)
	assert.Assert(t, err)
}

func randomSuffix() string {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "not-random--i-hope-thats-ok"
	}
	return hex.EncodeToString(bytes)
}

func truncate(s string) string {
	if len(s) >= 64 {
		return s[:63]
	}
	return s
}
