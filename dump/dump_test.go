package dump

import (
	"fmt"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/uploadhub/printdocs/testing/mongofixture"
	"github.com/uploadhub/printdocs/testing/testcontext"
)

func TestDumper_Collection(t *testing.T) {
	ctx := testcontext.Background()
	fix := mongofixture.Setup(ctx, t)

	t.Run("Empty collection prints the notice", func(t *testing.T) {
		out := &strings.Builder{}
		d := &Dumper{DB: fix.DB, Out: out, Limit: 50}

		err := d.Collection(ctx, "uploadmasters")
		assert.Assert(t, err)

		assert.Check(t, cmp.Contains(out.String(), "--- uploadmasters documents (up to 50) ---"))
		assert.Check(t, cmp.Contains(out.String(), "(no uploadmasters documents found)"))
	})

	t.Run("Prints every document in order", func(t *testing.T) {
		docs := make([]interface{}, 3)
		for i := range docs {
			docs[i] = bson.D{{Key: "seq", Value: int32(i)}}
		}
		fix.Seed(ctx, t, "uploadconsents", docs...)

		out := &strings.Builder{}
		d := &Dumper{DB: fix.DB, Out: out, Limit: 50}

		err := d.Collection(ctx, "uploadconsents")
		assert.Assert(t, err)

		got := out.String()
		assert.Check(t, cmp.Equal(strings.Count(got, `"$oid"`), 3))
		assert.Check(t, !strings.Contains(got, "no uploadconsents documents found"))

		// natural order is insertion order for a fresh collection
		last := -1
		for i := 0; i < 3; i++ {
			pos := strings.Index(got, fmt.Sprintf(`"$numberInt": "%d"`, i))
			assert.Check(t, pos > last, "document %d out of order", i)
			last = pos
		}
	})

	t.Run("Never prints more than the limit", func(t *testing.T) {
		docs := make([]interface{}, 8)
		for i := range docs {
			docs[i] = bson.D{{Key: "seq", Value: int32(i)}}
		}
		fix.Seed(ctx, t, "bigcollection", docs...)

		out := &strings.Builder{}
		d := &Dumper{DB: fix.DB, Out: out, Limit: 5}

		err := d.Collection(ctx, "bigcollection")
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(strings.Count(out.String(), `"$oid"`), 5))
	})

	t.Run("Extended JSON keeps bson types lossless", func(t *testing.T) {
		fix.Seed(ctx, t, "typed", bson.D{
			{Key: "count", Value: int64(9)},
			{Key: "name", Value: "consent-form"},
		})

		out := &strings.Builder{}
		d := &Dumper{DB: fix.DB, Out: out, Limit: 50}

		err := d.Collection(ctx, "typed")
		assert.Assert(t, err)

		got := out.String()
		assert.Check(t, cmp.Contains(got, `"$oid"`))
		assert.Check(t, cmp.Contains(got, `"$numberLong": "9"`))
		assert.Check(t, cmp.Contains(got, `"name": "consent-form"`))
	})
}

func TestDumper_Run(t *testing.T) {
	ctx := testcontext.Background()
	fix := mongofixture.Setup(ctx, t)

	fix.Seed(ctx, t, "uploadmasters", bson.D{{Key: "kind", Value: "master"}})

	out := &strings.Builder{}
	d := &Dumper{DB: fix.DB, Out: out, Limit: 50}

	err := d.Run(ctx, "uploadmasters", "uploadconsents")
	assert.Assert(t, err)

	got := out.String()
	masters := strings.Index(got, "--- uploadmasters documents")
	consents := strings.Index(got, "--- uploadconsents documents")
	assert.Check(t, masters >= 0)
	assert.Check(t, consents > masters, "collections printed out of order")
	assert.Check(t, cmp.Contains(got, `"kind": "master"`))
	assert.Check(t, cmp.Contains(got, "(no uploadconsents documents found)"))
}
