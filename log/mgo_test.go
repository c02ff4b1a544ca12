package log

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// 需要设置 TEMPO_TEST_MONGO, 如 mongodb://localhost:27017
func TestMgoLogger(t *testing.T) {
	uri := os.Getenv("TEMPO_TEST_MONGO")
	if uri == "" {
		t.Skip("TEMPO_TEST_MONGO not set")
	}
	db := "tempo_log_test"
	l, err := NewMgo(MgoUri(uri), MgoDb(db), MgoLogLvl("info"), MgoFlushDur(time.Hour))
	require.Nil(t, err)
	defer func() {
		_ = l.db.Drop(context.Background())
	}()

	l.Log(tempo.TInfo, "deferred call fired", "m.go:1", nil, util.M{"id": "x"})
	l.Log(tempo.TDebug, "hidden", "m.go:2", nil, nil)
	done := make(chan struct{})
	l.worker.Push(mgoFlush{done: done})
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	count, e := l.client.Database(db).Collection(mgoLog).CountDocuments(ctx, bson.D{})
	require.NoError(t, e)
	assert.Equal(t, int64(1), count)
}
