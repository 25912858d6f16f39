package tabular

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWithRows(n int) Table {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i)}
	}
	return Table{Headers: []string{"i"}, Rows: rows, TotalRows: n}
}

func TestPaginateCoversEveryRowExactlyOnce(t *testing.T) {
	for _, n := range []int{0, 1, 49, 50, 51, 100, 137} {
		for _, size := range []int{1, 7, 50, 200} {
			table := tableWithRows(n)
			pages := TotalPages(n, size)
			assert.Equal(t, (n+size-1)/size, pages, "n=%d size=%d", n, size)

			sum := 0
			next := 0
			for i := 0; i < pages; i++ {
				p := Paginate(table, i, size)
				for _, row := range p.Rows {
					assert.Equal(t, fmt.Sprint(next), row[0])
					next++
				}
				sum += len(p.Rows)
			}
			assert.Equal(t, n, sum, "n=%d size=%d", n, size)
		}
	}
}

func TestPaginateEmptyTableHasNoPages(t *testing.T) {
	p := Paginate(Table{}, 0, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, []string{}, p.Headers)
	assert.Equal(t, [][]string{}, p.Rows)
}

func TestPaginateOutOfRangeYieldsEmptyPage(t *testing.T) {
	table := tableWithRows(5)
	p := Paginate(table, 3, 2)
	assert.Empty(t, p.Rows)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 3, p.PageIndex)

	neg := Paginate(table, -1, 2)
	assert.Empty(t, neg.Rows)
}

func TestPaginateHugeIndexDoesNotOverflow(t *testing.T) {
	table := tableWithRows(2)
	for _, idx := range []int{math.MaxInt/50 + 1, math.MaxInt} {
		p := Paginate(table, idx, 50)
		assert.Empty(t, p.Rows)
		assert.Equal(t, 1, p.TotalPages)
	}

	p := Paginate(table, 0, math.MaxInt)
	assert.Equal(t, [][]string{{"0"}, {"1"}}, p.Rows)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, Paginate(table, 1, math.MaxInt).Rows)
}

func TestTotalPagesHugePageSize(t *testing.T) {
	assert.Equal(t, 1, TotalPages(2, math.MaxInt))
	assert.Equal(t, 1, TotalPages(math.MaxInt, math.MaxInt))
	assert.Equal(t, 2, TotalPages(math.MaxInt, math.MaxInt-1))
}

func TestPaginateLastPageIsClamped(t *testing.T) {
	p := Paginate(tableWithRows(5), 2, 2)
	assert.Equal(t, [][]string{{"4"}}, p.Rows)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 0, ClampPage(5, 0))
	assert.Equal(t, 0, ClampPage(-2, 4))
	assert.Equal(t, 3, ClampPage(9, 4))
	assert.Equal(t, 2, ClampPage(2, 4))
}

func TestViewerLatestRequestWins(t *testing.T) {
	release := map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}
	var mu sync.Mutex
	decode := func(data []byte, _, name string) Table {
		mu.Lock()
		ch := release[name]
		mu.Unlock()
		<-ch
		return Decode(data, "csv", name)
	}
	v := NewViewer(decode)
	v.Load([]byte("h\nold"), "", "old")
	v.Load([]byte("h\nnew"), "", "new")

	_, _, loading := v.Current()
	assert.True(t, loading)

	close(release["new"])
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := v.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"new"}}, got.Rows)

	// The superseded decode resolves late and must not replace the table.
	close(release["old"])
	time.Sleep(20 * time.Millisecond)
	cur, ok, loading := v.Current()
	assert.True(t, ok)
	assert.False(t, loading)
	assert.Equal(t, [][]string{{"new"}}, cur.Rows)
}

func TestViewerDropsSupersededResultResolvingFirst(t *testing.T) {
	release := map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}
	oldDone := make(chan struct{})
	var mu sync.Mutex
	decode := func(data []byte, _, name string) Table {
		mu.Lock()
		ch := release[name]
		mu.Unlock()
		<-ch
		if name == "old" {
			defer close(oldDone)
		}
		return Decode(data, "csv", name)
	}
	v := NewViewer(decode)
	v.Load([]byte("h\nold"), "", "old")
	v.Load([]byte("h\nnew"), "", "new")

	close(release["old"])
	<-oldDone
	time.Sleep(20 * time.Millisecond)
	_, ok, loading := v.Current()
	assert.False(t, ok)
	assert.True(t, loading)

	close(release["new"])
	got, err := v.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"new"}}, got.Rows)
}

func TestViewerResetDropsTable(t *testing.T) {
	v := NewViewer(nil)
	v.Load([]byte("a\n1"), "csv", "")
	_, err := v.Wait(context.Background())
	require.NoError(t, err)

	v.Reset()
	_, ok, loading := v.Current()
	assert.False(t, ok)
	assert.False(t, loading)
}

func TestViewerWaitHonorsContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	v := NewViewer(func([]byte, string, string) Table { <-block; return Table{} })
	v.Load(nil, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
