package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func swapDial(t *testing.T, dial func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error)) {
	t.Helper()
	orig := mongoDial
	mongoDial = dial
	t.Cleanup(func() { mongoDial = orig })
}

func TestConnect_CachesClient(t *testing.T) {
	var dials int32
	fake := &mongo.Client{}
	swapDial(t, func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		return fake, nil
	})

	db := NewMongo(DefaultMongoConfig())

	first, err := db.Connect(context.Background())
	require.NoError(t, err)
	second, err := db.Connect(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestConnect_CoalescesConcurrentCallers(t *testing.T) {
	var dials int32
	release := make(chan struct{})
	fake := &mongo.Client{}
	swapDial(t, func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		<-release
		return fake, nil
	})

	db := NewMongo(DefaultMongoConfig())

	const callers = 10
	var wg sync.WaitGroup
	clients := make([]*mongo.Client, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i], errs[i] = db.Connect(context.Background())
		}(i)
	}

	// Let all callers pile up on the single in-flight attempt
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, fake, clients[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestConnect_RetriesAfterFailure(t *testing.T) {
	var dials int32
	dialErr := errors.New("connection refused")
	fake := &mongo.Client{}
	swapDial(t, func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, dialErr
		}
		return fake, nil
	})

	db := NewMongo(DefaultMongoConfig())

	_, err := db.Connect(context.Background())
	require.ErrorIs(t, err, dialErr)

	// A failed attempt must not be cached
	client, err := db.Connect(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, client)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
}

func TestConnect_WaiterHonorsContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	swapDial(t, func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
		close(started)
		<-release
		return &mongo.Client{}, nil
	})
	t.Cleanup(func() { close(release) })

	db := NewMongo(DefaultMongoConfig())

	go func() {
		_, _ = db.Connect(context.Background())
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := db.Connect(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClose_WithoutConnect(t *testing.T) {
	db := NewMongo(nil)
	assert.NoError(t, db.Close(context.Background()))
}
