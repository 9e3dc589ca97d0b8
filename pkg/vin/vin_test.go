package vin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassops/glassops-backend/pkg/types"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid("1HGCM82633A004352"))
	assert.False(t, Valid("1HGCM82633A00435"), "16 chars")
	assert.False(t, Valid("1HGCM82633A0043O2"), "contains O")
	assert.False(t, Valid("1hgcm82633a004352"), "lowercase before normalize")
	assert.True(t, Valid(Normalize(" 1hgcm82633a004352 ")))
}

func TestNHTSADecoderParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/DecodeVinValues/1HGCM82633A004352", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		fmt.Fprint(w, `{"Count":1,"Results":[{"ModelYear":"2003","Make":"HONDA","Model":"Accord","ErrorCode":"0"}]}`)
	}))
	defer srv.Close()

	dec, err := NewNHTSADecoder(srv.URL+"/", time.Second, srv.Client())
	require.NoError(t, err)

	info, err := dec.Decode(context.Background(), "1hgcm82633a004352")
	require.NoError(t, err)
	assert.Equal(t, types.VehicleInfo{Year: "2003", Make: "HONDA", Model: "Accord"}, info)
}

func TestNHTSADecoderFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "5XYZU3LB0DG000000") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"Results":[{"ModelYear":"","Make":"","Model":"","ErrorCode":"8"}]}`)
	}))
	defer srv.Close()

	dec, err := NewNHTSADecoder(srv.URL, time.Second, srv.Client())
	require.NoError(t, err)

	_, err = dec.Decode(context.Background(), "1HGCM82633A004352")
	assert.ErrorIs(t, err, ErrNotDecoded)

	_, err = dec.Decode(context.Background(), "5XYZU3LB0DG000000")
	assert.Error(t, err)

	_, err = dec.Decode(context.Background(), "short")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNHTSADecoderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	dec, err := NewNHTSADecoder(srv.URL, 20*time.Millisecond, srv.Client())
	require.NoError(t, err)
	_, err = dec.Decode(context.Background(), "1HGCM82633A004352")
	assert.Error(t, err)
}

type countingDecoder struct {
	calls atomic.Int32
	info  types.VehicleInfo
	err   error
}

func (c *countingDecoder) Decode(ctx context.Context, vin string) (types.VehicleInfo, error) {
	c.calls.Add(1)
	return c.info, c.err
}

type memoryCache struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) VINKey(vin string) string { return "vin:" + vin }

func TestCachedDecoderMemoizesSuccess(t *testing.T) {
	next := &countingDecoder{info: types.VehicleInfo{Year: "2019", Make: "TOYOTA", Model: "Camry"}}
	cache := newMemoryCache()
	dec, err := NewCachedDecoder(next, cache, 0, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		info, err := dec.Decode(context.Background(), "4T1B11HK5KU000000")
		require.NoError(t, err)
		assert.Equal(t, "Camry", info.Model)
	}
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 30*24*time.Hour, cache.ttls["vin:4T1B11HK5KU000000"])
}

func TestCachedDecoderDoesNotCacheFailures(t *testing.T) {
	next := &countingDecoder{err: ErrNotDecoded}
	cache := newMemoryCache()
	dec, err := NewCachedDecoder(next, cache, time.Hour, nil)
	require.NoError(t, err)

	_, err = dec.Decode(context.Background(), "4T1B11HK5KU000000")
	assert.ErrorIs(t, err, ErrNotDecoded)
	assert.Empty(t, cache.data)
}

func TestCachedDecoderSurvivesCacheOutage(t *testing.T) {
	next := &countingDecoder{info: types.VehicleInfo{Year: "2019", Make: "TOYOTA"}}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	dec, err := NewCachedDecoder(next, cache, time.Hour, nil)
	require.NoError(t, err)

	info, err := dec.Decode(context.Background(), "4T1B11HK5KU000000")
	require.NoError(t, err)
	assert.Equal(t, "TOYOTA", info.Make)
}
