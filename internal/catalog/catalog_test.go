/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenCreatesEmptyCatalog(t *testing.T) {
	c := openTest(t)
	n, err := c.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReplaceAndPage(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()

	entries := []Entry{
		{Path: "ZETA.EPU", Title: "Zeta Tales", Author: "A. Author", Size: 100, ModTime: time.Now(), Hash: 1},
		{Path: "ALPHA.EPU", Title: "Alpha Tales", Author: "B. Other", Size: 200, ModTime: time.Now(), Hash: 2},
	}
	require.NoError(t, c.Replace(ctx, entries))

	n, err := c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	page, err := c.Page(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "Alpha Tales", page[0].Title, "page is ordered by title")
	require.Equal(t, "Zeta Tales", page[1].Title)
}

func TestPagePagination(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()

	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, Entry{
			Path: string(rune('A' + i)), Title: string(rune('A' + i)), Author: "x", ModTime: time.Now(),
		})
	}
	require.NoError(t, c.Replace(ctx, entries))

	first, err := c.Page(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "A", first[0].Title)
	require.Equal(t, "B", first[1].Title)

	second, err := c.Page(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, "C", second[0].Title)
	require.Equal(t, "D", second[1].Title)
}

func TestInvalidateClearsEntries(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()

	require.NoError(t, c.Replace(ctx, []Entry{{Path: "A.EPU", Title: "A", Author: "x", ModTime: time.Now()}}))
	n, err := c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, c.Invalidate(ctx))
	n, err = c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestSearchMatchesTitleAndAuthor(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()

	require.NoError(t, c.Replace(ctx, []Entry{
		{Path: "DUNE.EPU", Title: "Dune", Author: "Frank Herbert", ModTime: time.Now()},
		{Path: "HOBBIT.EPU", Title: "The Hobbit", Author: "J.R.R. Tolkien", ModTime: time.Now()},
	}))

	byTitle, err := c.Search(ctx, "Dune", 10)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	require.Equal(t, "Dune", byTitle[0].Title)

	byAuthor, err := c.Search(ctx, "Tolkien", 10)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	require.Equal(t, "The Hobbit", byAuthor[0].Title)

	none, err := c.Search(ctx, "Asimov", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}
