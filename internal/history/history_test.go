// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://flowise.local:3000"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx, baseURL, "support-bot")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Record(ctx, Push{
		BaseURL:      baseURL,
		GraphName:    "support-bot",
		ChatflowID:   "cf-1",
		ChatflowName: "support-bot",
		FlowType:     "CHATFLOW",
	}))

	p, err := s.Latest(ctx, baseURL, "support-bot")
	require.NoError(t, err)
	assert.Equal(t, "cf-1", p.ChatflowID)
	assert.Equal(t, "CHATFLOW", p.FlowType)
	assert.False(t, p.PushedAt.IsZero())

	// Same graph on another instance is tracked separately.
	_, err = s.Latest(ctx, "http://other:3000", "support-bot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Push{BaseURL: baseURL, GraphName: "g", ChatflowID: "cf-1", PushedAt: first}))
	require.NoError(t, s.Record(ctx, Push{BaseURL: baseURL, GraphName: "g", ChatflowID: "cf-2", PushedAt: first.Add(time.Hour)}))

	p, err := s.Latest(ctx, baseURL, "g")
	require.NoError(t, err)
	assert.Equal(t, "cf-2", p.ChatflowID)
	assert.Equal(t, first.Add(time.Hour), p.PushedAt)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordRequiresKeys(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), Push{BaseURL: baseURL, GraphName: "g"})
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, Push{
			BaseURL:    baseURL,
			GraphName:  name,
			ChatflowID: "cf-" + name,
			PushedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].GraphName, all[1].GraphName, all[2].GraphName})

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestForget(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, Push{BaseURL: baseURL, GraphName: "g", ChatflowID: "cf-1"}))

	ok, err := s.Forget(ctx, baseURL, "g")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Forget(ctx, baseURL, "g")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Push{BaseURL: baseURL, GraphName: "g", ChatflowID: "cf-1"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	p, err := s.Latest(ctx, baseURL, "g")
	require.NoError(t, err)
	assert.Equal(t, "cf-1", p.ChatflowID)
}
