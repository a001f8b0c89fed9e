package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/storage"
)

func TestLocate_Deterministic(t *testing.T) {
	s := New()

	assert.Equal(t, storage.Location{Key: "40"}, s.Locate(40))
	assert.Equal(t, s.Locate(40), s.Locate(40))
	assert.NotEqual(t, s.Locate(40), s.Locate(41))
}

func TestWriteAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()
	loc := s.Locate(40)

	require.NoError(t, s.Write(ctx, loc, []byte("hello")))

	got, err := s.Read(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestRead_NotFound(t *testing.T) {
	s := New()

	_, err := s.Read(context.Background(), s.Locate(41))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// A not-found lookup still counts as a backend read attempt
	assert.Equal(t, int64(1), s.Reads())
}

func TestWrite_Overwrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	loc := s.Locate(40)

	require.NoError(t, s.Write(ctx, loc, []byte("first")))
	require.NoError(t, s.Write(ctx, loc, []byte("second")))

	got, err := s.Read(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, 1, s.Len())
}

func TestRead_ReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	loc := s.Locate(40)

	require.NoError(t, s.Write(ctx, loc, []byte("hello")))

	got, err := s.Read(ctx, loc)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Read(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again)
}

func TestFailureInjection(t *testing.T) {
	s := New()
	ctx := context.Background()
	loc := s.Locate(40)

	require.NoError(t, s.Write(ctx, loc, []byte("hello")))

	s.FailReads(true)
	_, err := s.Read(ctx, loc)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.False(t, errors.IsNotFound(err))

	s.FailReads(false)
	_, err = s.Read(ctx, loc)
	assert.NoError(t, err)

	s.FailWrites(true)
	err = s.Write(ctx, loc, []byte("nope"))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Read(ctx, s.Locate(40))
	assert.Error(t, err)

	err = s.Write(ctx, s.Locate(40), []byte("x"))
	assert.Error(t, err)
}
