package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Continuity-Map/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
	log    logging.Logger
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.log = logging.NewNopLogger()

	s.client = &Client{
		rdb:    db,
		config: &config.RedisConfig{},
		logger: s.log,
	}
	s.cache = NewRedisCache(s.client, s.log, WithPrefix("test:"), WithDefaultTTL(time.Minute))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "Ana", Age: 30}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:key1").SetErr(errors.New("connection reset"))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	assert.Error(s.T(), err)
	assert.NotEqual(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	raw, _ := json.Marshal(testStruct{Name: "Ana"})
	s.mock.ExpectSet("test:key1", raw, time.Minute).SetVal("OK")

	err := s.cache.Set(context.Background(), "key1", testStruct{Name: "Ana"}, 0)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	val := testStruct{Name: "Ana", Age: 30}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var called bool
	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		called = true
		return val, nil
	})
	assert.NoError(s.T(), err)
	assert.False(s.T(), called)
	assert.Equal(s.T(), val, dest)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func newMiniCache(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCache(client, logging.NewNopLogger())
}

func TestGetOrSet_LoadsOnceUnderConcurrency(t *testing.T) {
	_, cache := newMiniCache(t)
	var loads int32

	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(50 * time.Millisecond)
		return testStruct{Name: "Luis", Age: 41}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest testStruct
			assert.NoError(t, cache.GetOrSet(context.Background(), "shared", &dest, time.Minute, loader))
			assert.Equal(t, "Luis", dest.Name)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestGetOrSet_LoaderErrorIsNotCached(t *testing.T) {
	mr, cache := newMiniCache(t)
	boom := errors.New("boom")

	var dest testStruct
	err := cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("cmap:k"))
}

func testDataset() *personnel.CleanDataset {
	return &personnel.CleanDataset{
		Records: []personnel.PointRecord{
			{Row: 2, Name: "Ana Pérez", City: "Bogotá", Criticality: "Alta", Latitude: 4.65, Longitude: -74.05},
		},
		InputRows:  3,
		TotalClean: 1,
		Drops:      map[personnel.DropReason]int{personnel.DropMissing: 2},
	}
}

func TestDatasetCache_LoadOrValidate(t *testing.T) {
	mr, cache := newMiniCache(t)
	dc := NewDatasetCache(cache, time.Hour, logging.NewNopLogger())
	ctx := context.Background()
	ds := testDataset()

	var validations int
	validate := func(context.Context) (*personnel.CleanDataset, error) {
		validations++
		return ds, nil
	}

	got, cached, err := dc.LoadOrValidate(ctx, "abc:3000:rand", validate)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Same(t, ds, got)
	assert.True(t, mr.Exists("cmap:dataset:abc:3000:rand"))
	assert.Equal(t, time.Hour, mr.TTL("cmap:dataset:abc:3000:rand"))

	got, cached, err = dc.LoadOrValidate(ctx, "abc:3000:rand", validate)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, ds, got)
	assert.Equal(t, 1, validations)

	_, cached, err = dc.LoadOrValidate(ctx, "abc:10:rand", validate)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, validations)

	mr.FastForward(time.Hour + time.Second)
	_, cached, err = dc.LoadOrValidate(ctx, "abc:3000:rand", validate)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, validations)
}

func TestDatasetCache_ValidationErrorIsReturned(t *testing.T) {
	mr, cache := newMiniCache(t)
	dc := NewDatasetCache(cache, time.Hour, logging.NewNopLogger())

	schemaErr := pkgerrors.New(pkgerrors.ErrCodeSchema, "missing columns")
	_, _, err := dc.LoadOrValidate(context.Background(), "bad", func(context.Context) (*personnel.CleanDataset, error) {
		return nil, schemaErr
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSchema))
	assert.False(t, mr.Exists("cmap:dataset:bad"))
}

func TestDatasetCache_BackendDownStillValidates(t *testing.T) {
	mr, cache := newMiniCache(t)
	dc := NewDatasetCache(cache, time.Hour, logging.NewNopLogger())
	mr.Close()

	ds := testDataset()
	got, cached, err := dc.LoadOrValidate(context.Background(), "abc", func(context.Context) (*personnel.CleanDataset, error) {
		return ds, nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Same(t, ds, got)
}

//Personal.AI order the ending
